package domain

import "time"

// Record is a persisted text chunk with its embedding.
// Records are immutable once written; there is no update operation.
type Record struct {
	// ID is the unique identifier, generated by the store on insert.
	ID string

	// Text is the chunk content.
	Text string

	// ReferenceID is the caller-supplied grouping key. Many records
	// share one reference ID (one document mapped to N chunks).
	ReferenceID string

	// Embedding is the vector representation of Text.
	Embedding []float32

	// Language is an optional language tag (e.g. "en").
	Language string

	// Meta contains arbitrary caller-supplied key-value pairs.
	Meta map[string]any

	// CreatedAt is when the record was inserted.
	CreatedAt time.Time
}

// SearchResult is a single similarity hit.
type SearchResult struct {
	// ID identifies the matched record.
	ID string

	// Text is the matched chunk content.
	Text string

	// ReferenceID is the grouping key of the matched record.
	ReferenceID string

	// Score is the cosine similarity to the query, in [-1, 1].
	Score float64
}

// IngestedChunk is one element of an ingestion result, in chunk order.
type IngestedChunk struct {
	ID        string
	Text      string
	Embedding []float32
}

// EncodedChunk is one element of a persistence-free encode result.
type EncodedChunk struct {
	Text      string
	Embedding []float32
}

// BulkItem is one input item of a bulk encode call.
type BulkItem struct {
	ID   string
	Text string
}

// BulkEncodedChunk is one element of a bulk encode result. A source item
// that splits into N chunks yields N entries sharing the item's ID.
type BulkEncodedChunk struct {
	ID        string
	Text      string
	Embedding []float32
}
