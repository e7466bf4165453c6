package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrInvalidInput indicates malformed or invalid input, such as a
	// non-positive batch size or an overlap that is not smaller than
	// the chunk size. Rejected before any external call.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDimensionMismatch indicates an embedding whose length differs
	// from the store's established dimension. Comparing vectors of
	// different dimensions is undefined, so this fails fast.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrEmbeddingCount indicates the embedding capability returned a
	// different number of vectors than texts submitted.
	ErrEmbeddingCount = errors.New("embedding count mismatch")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured or unreachable.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrStoreUnavailable indicates the record store is not configured.
	ErrStoreUnavailable = errors.New("record store unavailable")

	// ErrNotFound indicates a requested entity does not exist.
	// Deletes of absent records are no-ops and do NOT return this.
	ErrNotFound = errors.New("not found")
)
