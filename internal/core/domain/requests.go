package domain

// Default tunables for pipeline operations.
const (
	// DefaultBatchSize bounds how many texts go to the embedding
	// capability in a single call.
	DefaultBatchSize = 32

	// DefaultChunkSize is the maximum chunk length in characters.
	DefaultChunkSize = 1000

	// ChunkOverlap is the number of characters repeated between
	// consecutive chunks. Fixed, not caller-tunable.
	ChunkOverlap = 20

	// DefaultCutoff is the minimum similarity score for a search hit.
	DefaultCutoff = 0.2

	// DefaultTopK is the maximum number of search results.
	DefaultTopK = 10
)

// IngestRequest describes one ingestion call.
type IngestRequest struct {
	// Text is the raw input to chunk, encode and persist.
	Text string

	// ReferenceID groups the resulting records.
	ReferenceID string

	// Meta is attached verbatim to every resulting record.
	Meta map[string]any

	// Language is an optional language tag stored with each record.
	Language string

	// BatchSize bounds the encoder sub-batches. Zero means DefaultBatchSize.
	BatchSize int

	// ChunkSize is the maximum chunk length. Zero means DefaultChunkSize.
	ChunkSize int
}

// SearchRequest describes one similarity search.
type SearchRequest struct {
	// Query is the free-text query to encode and match.
	Query string

	// Language is accepted for forward compatibility but is not
	// currently applied as a filter.
	Language string

	// Cutoff is the minimum similarity score, in [-1, 1].
	// The zero value is replaced by DefaultCutoff; to search without a
	// threshold pass a negative cutoff such as -1.
	Cutoff float64

	// TopK is the maximum number of results. Zero means DefaultTopK.
	TopK int
}

// EncodeRequest describes a persistence-free encode of one text.
type EncodeRequest struct {
	Text      string
	BatchSize int
	ChunkSize int
}

// Normalise applies defaults to unset fields.
func (r *IngestRequest) Normalise() {
	if r.BatchSize == 0 {
		r.BatchSize = DefaultBatchSize
	}
	if r.ChunkSize == 0 {
		r.ChunkSize = DefaultChunkSize
	}
}

// Normalise applies defaults to unset fields.
func (r *SearchRequest) Normalise() {
	if r.Cutoff == 0 {
		r.Cutoff = DefaultCutoff
	}
	if r.TopK == 0 {
		r.TopK = DefaultTopK
	}
}

// Normalise applies defaults to unset fields.
func (r *EncodeRequest) Normalise() {
	if r.BatchSize == 0 {
		r.BatchSize = DefaultBatchSize
	}
	if r.ChunkSize == 0 {
		r.ChunkSize = DefaultChunkSize
	}
}
