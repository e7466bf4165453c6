// Package domain defines the core business entities for textvault.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Record: A persisted text chunk with its embedding and metadata
//   - SearchResult: A ranked similarity hit
//   - IngestRequest / SearchRequest: operation inputs with their defaults
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
package domain
