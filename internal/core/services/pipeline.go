package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/textvault/textvault/internal/chunker"
	"github.com/textvault/textvault/internal/core/domain"
	"github.com/textvault/textvault/internal/core/ports/driven"
	"github.com/textvault/textvault/internal/core/ports/driving"
	"github.com/textvault/textvault/internal/logger"
)

// Ensure PipelineService implements the interface.
var _ driving.Pipeline = (*PipelineService)(nil)

// PipelineService composes chunker, encoder and record store into the
// ingestion and retrieval pipeline. It holds no cross-call state; every
// operation is a function of its inputs plus the store's contents.
type PipelineService struct {
	encoder *Encoder
	store   driven.RecordStore
}

// NewPipelineService creates the pipeline over explicit dependencies.
// Injecting the capabilities here (rather than process-wide singletons)
// keeps the service testable with doubles.
func NewPipelineService(embedding driven.EmbeddingService, store driven.RecordStore) *PipelineService {
	return &PipelineService{
		encoder: NewEncoder(embedding),
		store:   store,
	}
}

// Ingest chunks the text, encodes all chunks in one logical batch, and
// inserts one record per chunk in order.
//
// Ingestion is not atomic across chunks: if an insert fails partway,
// records inserted so far remain persisted. Callers reconcile via
// ListByReference or re-issue by reference ID.
func (s *PipelineService) Ingest(ctx context.Context, req domain.IngestRequest) ([]domain.IngestedChunk, error) {
	if s.store == nil {
		return nil, domain.ErrStoreUnavailable
	}
	req.Normalise()

	logger.Section("Ingest")
	logger.Debug("Reference: %q, chunk size: %d, batch size: %d", req.ReferenceID, req.ChunkSize, req.BatchSize)

	split, err := chunker.New(req.ChunkSize, domain.ChunkOverlap)
	if err != nil {
		return nil, err
	}
	chunks := split.Split(req.Text)
	if len(chunks) == 0 {
		return []domain.IngestedChunk{}, nil
	}
	logger.Debug("Split into %d chunks", len(chunks))

	embeddings, err := s.encoder.Encode(ctx, chunks, req.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}

	results := make([]domain.IngestedChunk, 0, len(chunks))
	for i, chunk := range chunks {
		id, err := s.store.Insert(ctx, domain.Record{
			Text:        chunk,
			ReferenceID: req.ReferenceID,
			Embedding:   embeddings[i],
			Language:    req.Language,
			Meta:        req.Meta,
		})
		if err != nil {
			// Earlier chunks stay persisted; report which one failed.
			return nil, fmt.Errorf("ingest: insert chunk %d of %d: %w", i, len(chunks), err)
		}
		results = append(results, domain.IngestedChunk{
			ID:        id,
			Text:      chunk,
			Embedding: embeddings[i],
		})
	}

	logger.Info("Ingested %d chunks for reference %q", len(results), req.ReferenceID)
	return results, nil
}

// Search encodes the query as a single-item batch and runs the store's
// similarity query. The request's Language field is accepted but not
// applied as a filter.
func (s *PipelineService) Search(ctx context.Context, req domain.SearchRequest) ([]domain.SearchResult, error) {
	if s.store == nil {
		return nil, domain.ErrStoreUnavailable
	}
	req.Normalise()

	logger.Section("Search")
	logger.Debug("Query: %q, cutoff: %.2f, top_k: %d", req.Query, req.Cutoff, req.TopK)

	if strings.TrimSpace(req.Query) == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	if req.Cutoff < -1 || req.Cutoff > 1 {
		return nil, fmt.Errorf("%w: cutoff must be in [-1, 1], got %g", domain.ErrInvalidInput, req.Cutoff)
	}
	if req.TopK <= 0 {
		return nil, fmt.Errorf("%w: top_k must be positive, got %d", domain.ErrInvalidInput, req.TopK)
	}

	embedding, err := s.encoder.EncodeOne(ctx, req.Query)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	results, err := s.store.Search(ctx, embedding, req.Cutoff, req.TopK)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	logger.Debug("Search returned %d results", len(results))
	return results, nil
}

// Encode chunks and encodes one text without persisting anything.
func (s *PipelineService) Encode(ctx context.Context, req domain.EncodeRequest) ([]domain.EncodedChunk, error) {
	req.Normalise()

	split, err := chunker.New(req.ChunkSize, domain.ChunkOverlap)
	if err != nil {
		return nil, err
	}
	chunks := split.Split(req.Text)
	if len(chunks) == 0 {
		return []domain.EncodedChunk{}, nil
	}

	embeddings, err := s.encoder.Encode(ctx, chunks, req.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}

	results := make([]domain.EncodedChunk, len(chunks))
	for i, chunk := range chunks {
		results[i] = domain.EncodedChunk{Text: chunk, Embedding: embeddings[i]}
	}
	return results, nil
}

// EncodeQuery encodes one text as-is, without chunking.
func (s *PipelineService) EncodeQuery(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty text", domain.ErrInvalidInput)
	}
	return s.encoder.EncodeOne(ctx, text)
}

// EncodeBulk chunks every item, encodes all chunks in one logical batch
// across items, and returns the flattened per-chunk results. Each chunk
// inherits the ID of its source item.
func (s *PipelineService) EncodeBulk(ctx context.Context, items []domain.BulkItem, batchSize, chunkSize int) ([]domain.BulkEncodedChunk, error) {
	if batchSize == 0 {
		batchSize = domain.DefaultBatchSize
	}
	if chunkSize == 0 {
		chunkSize = domain.DefaultChunkSize
	}

	split, err := chunker.New(chunkSize, domain.ChunkOverlap)
	if err != nil {
		return nil, err
	}

	var texts []string
	var ids []string
	for _, item := range items {
		for _, chunk := range split.Split(item.Text) {
			texts = append(texts, chunk)
			ids = append(ids, item.ID)
		}
	}
	if len(texts) == 0 {
		return []domain.BulkEncodedChunk{}, nil
	}

	embeddings, err := s.encoder.Encode(ctx, texts, batchSize)
	if err != nil {
		return nil, fmt.Errorf("encode bulk: %w", err)
	}

	results := make([]domain.BulkEncodedChunk, len(texts))
	for i := range texts {
		results[i] = domain.BulkEncodedChunk{
			ID:        ids[i],
			Text:      texts[i],
			Embedding: embeddings[i],
		}
	}
	return results, nil
}

// Delete removes one record. Absent IDs are a no-op.
func (s *PipelineService) Delete(ctx context.Context, id string) error {
	if s.store == nil {
		return domain.ErrStoreUnavailable
	}
	if id == "" {
		return fmt.Errorf("%w: empty id", domain.ErrInvalidInput)
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete %q: %w", id, err)
	}
	return nil
}

// DeleteByReference removes all records sharing the reference ID.
func (s *PipelineService) DeleteByReference(ctx context.Context, referenceID string) error {
	if s.store == nil {
		return domain.ErrStoreUnavailable
	}
	if referenceID == "" {
		return fmt.Errorf("%w: empty reference id", domain.ErrInvalidInput)
	}
	if err := s.store.DeleteByReference(ctx, referenceID); err != nil {
		return fmt.Errorf("delete reference %q: %w", referenceID, err)
	}
	return nil
}

// ListByReference returns all records sharing the reference ID, in
// insertion order.
func (s *PipelineService) ListByReference(ctx context.Context, referenceID string) ([]domain.Record, error) {
	if s.store == nil {
		return nil, domain.ErrStoreUnavailable
	}
	if referenceID == "" {
		return nil, fmt.Errorf("%w: empty reference id", domain.ErrInvalidInput)
	}
	records, err := s.store.ListByReference(ctx, referenceID)
	if err != nil {
		return nil, fmt.Errorf("list reference %q: %w", referenceID, err)
	}
	return records, nil
}
