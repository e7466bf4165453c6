// Package memory provides an in-memory record store for tests and
// ephemeral deployments.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/textvault/textvault/internal/core/domain"
	"github.com/textvault/textvault/internal/core/ports/driven"
)

// Ensure RecordStore implements the interface.
var _ driven.RecordStore = (*RecordStore)(nil)

// RecordStore is an in-memory implementation of driven.RecordStore
// using brute-force cosine similarity. Ties in Search are broken by
// insertion order (earlier records first).
type RecordStore struct {
	mu        sync.RWMutex
	records   []domain.Record // insertion order
	dimension int             // established by first insert; 0 = empty
}

// NewRecordStore creates an empty in-memory record store.
func NewRecordStore() *RecordStore {
	return &RecordStore{}
}

// Insert stores a record and returns its generated ID.
func (s *RecordStore) Insert(_ context.Context, rec domain.Record) (string, error) {
	if len(rec.Embedding) == 0 {
		return "", fmt.Errorf("%w: empty embedding", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dimension == 0 {
		s.dimension = len(rec.Embedding)
	} else if len(rec.Embedding) != s.dimension {
		return "", fmt.Errorf("%w: store dimension %d, got %d",
			domain.ErrDimensionMismatch, s.dimension, len(rec.Embedding))
	}

	rec.ID = uuid.New().String()
	rec.CreatedAt = time.Now().UTC()
	s.records = append(s.records, rec)
	return rec.ID, nil
}

// Delete removes one record. Absent IDs are a no-op.
func (s *RecordStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, rec := range s.records {
		if rec.ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return nil
		}
	}
	return nil
}

// DeleteByReference removes all records sharing the reference ID.
func (s *RecordStore) DeleteByReference(_ context.Context, referenceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.records[:0]
	for _, rec := range s.records {
		if rec.ReferenceID != referenceID {
			kept = append(kept, rec)
		}
	}
	s.records = kept
	return nil
}

// ListByReference returns records sharing the reference ID, in
// insertion order.
func (s *RecordStore) ListByReference(_ context.Context, referenceID string) ([]domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Record
	for _, rec := range s.records {
		if rec.ReferenceID == referenceID {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Search scores every record against the query embedding.
func (s *RecordStore) Search(_ context.Context, embedding []float32, cutoff float64, topK int) ([]domain.SearchResult, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("%w: top_k must be positive, got %d", domain.ErrInvalidInput, topK)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.dimension != 0 && len(embedding) != s.dimension {
		return nil, fmt.Errorf("%w: store dimension %d, query dimension %d",
			domain.ErrDimensionMismatch, s.dimension, len(embedding))
	}

	var results []domain.SearchResult
	for _, rec := range s.records {
		score := domain.CosineSimilarity(rec.Embedding, embedding)
		if score > cutoff {
			results = append(results, domain.SearchResult{
				ID:          rec.ID,
				Text:        rec.Text,
				ReferenceID: rec.ReferenceID,
				Score:       score,
			})
		}
	}

	// Stable sort keeps insertion order for equal scores.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Count returns the number of stored records.
func (s *RecordStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Close releases resources.
func (s *RecordStore) Close() error {
	return nil
}
