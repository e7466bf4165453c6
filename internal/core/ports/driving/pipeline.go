package driving

import (
	"context"

	"github.com/textvault/textvault/internal/core/domain"
)

// Pipeline exposes the embedding-and-retrieval operations to external actors.
type Pipeline interface {
	// Ingest chunks, encodes and persists one text. The result is in
	// chunk order. Ingestion is not atomic across chunks: on a partial
	// failure earlier chunks stay persisted, and callers reconcile via
	// ListByReference or re-issue by reference ID.
	Ingest(ctx context.Context, req domain.IngestRequest) ([]domain.IngestedChunk, error)

	// Search encodes the query and returns ranked similarity results.
	Search(ctx context.Context, req domain.SearchRequest) ([]domain.SearchResult, error)

	// Encode chunks and encodes one text without persisting anything.
	Encode(ctx context.Context, req domain.EncodeRequest) ([]domain.EncodedChunk, error)

	// EncodeQuery encodes one text as-is, without chunking.
	EncodeQuery(ctx context.Context, text string) ([]float32, error)

	// EncodeBulk chunks and encodes many items in one logical batch.
	// The flattened result has one entry per chunk, each inheriting the
	// ID of its source item.
	EncodeBulk(ctx context.Context, items []domain.BulkItem, batchSize, chunkSize int) ([]domain.BulkEncodedChunk, error)

	// Delete removes one record. Absent IDs are a no-op.
	Delete(ctx context.Context, id string) error

	// DeleteByReference removes all records sharing the reference ID.
	DeleteByReference(ctx context.Context, referenceID string) error

	// ListByReference returns all records sharing the reference ID.
	ListByReference(ctx context.Context, referenceID string) ([]domain.Record, error)
}
