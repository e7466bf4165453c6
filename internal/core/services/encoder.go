package services

import (
	"context"
	"fmt"

	"github.com/textvault/textvault/internal/core/domain"
	"github.com/textvault/textvault/internal/core/ports/driven"
	"github.com/textvault/textvault/internal/logger"
)

// Encoder turns batches of text into embeddings via the external
// embedding capability, partitioning input into sub-batches to bound
// peak resource use per call. Sub-batching is sequential: it exists to
// cap memory and compute per external call, not for concurrency.
type Encoder struct {
	embedding driven.EmbeddingService
}

// NewEncoder creates an Encoder over the given embedding service.
func NewEncoder(embedding driven.EmbeddingService) *Encoder {
	return &Encoder{embedding: embedding}
}

// Encode returns one embedding per text, preserving input order.
// batchSize must be positive; failures from the capability are
// propagated without retry.
func (e *Encoder) Encode(ctx context.Context, texts []string, batchSize int) ([][]float32, error) {
	if e.embedding == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if batchSize <= 0 {
		return nil, fmt.Errorf("%w: batch size must be positive, got %d", domain.ErrInvalidInput, batchSize)
	}
	if len(texts) == 0 {
		return nil, nil
	}

	embeddings := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += batchSize {
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		sub := texts[start:end]

		logger.Debug("Encoding sub-batch %d..%d of %d texts", start, end, len(texts))
		vectors, err := e.embedding.EmbedBatch(ctx, sub)
		if err != nil {
			return nil, fmt.Errorf("encode batch %d..%d: %w", start, end, err)
		}
		if len(vectors) != len(sub) {
			return nil, fmt.Errorf("%w: got %d embeddings for %d texts",
				domain.ErrEmbeddingCount, len(vectors), len(sub))
		}
		embeddings = append(embeddings, vectors...)
	}

	return embeddings, nil
}

// EncodeOne embeds a single text without chunking, as a one-item batch.
func (e *Encoder) EncodeOne(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := e.Encode(ctx, []string{text}, 1)
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// Dimensions reports the embedding dimension of the underlying model.
func (e *Encoder) Dimensions() int {
	if e.embedding == nil {
		return 0
	}
	return e.embedding.Dimensions()
}
