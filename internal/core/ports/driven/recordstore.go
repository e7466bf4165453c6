package driven

import (
	"context"

	"github.com/textvault/textvault/internal/core/domain"
)

// RecordStore persists records and answers similarity queries.
// This is the external storage capability: append row, query by vector
// distance, delete by predicate. Records are immutable once written, so
// implementations only need safe concurrent inserts and deletes.
//
// The store establishes its embedding dimension from the first inserted
// record (or from configuration). Inserting or searching with a vector
// of any other length must fail with domain.ErrDimensionMismatch; a
// silently-wrong score is never acceptable.
type RecordStore interface {
	// Insert durably writes a record and returns its generated ID.
	// The write is visible to subsequent queries before Insert returns.
	Insert(ctx context.Context, rec domain.Record) (string, error)

	// Delete removes one record. Absent IDs are a no-op, not an error.
	Delete(ctx context.Context, id string) error

	// DeleteByReference removes all records sharing the reference ID.
	// Zero matches is a no-op.
	DeleteByReference(ctx context.Context, referenceID string) error

	// ListByReference returns all records sharing the reference ID, in
	// insertion order. Callers use this to reconcile partial ingestion.
	ListByReference(ctx context.Context, referenceID string) ([]domain.Record, error)

	// Search returns records with cosine similarity to embedding
	// strictly above cutoff, sorted descending by score, at most topK.
	// Each implementation documents its tie-break order.
	Search(ctx context.Context, embedding []float32, cutoff float64, topK int) ([]domain.SearchResult, error)

	// Close releases resources.
	Close() error
}
