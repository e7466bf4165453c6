// Package chromem provides a record store backed by chromem-go, an
// embedded vector database with a native cosine similarity query.
//
// The store is in-process and process-scoped: records live for the
// lifetime of the owning process. Deployments that need durable records
// use the sqlite store instead.
package chromem

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/philippgille/chromem-go"

	"github.com/textvault/textvault/internal/core/domain"
	"github.com/textvault/textvault/internal/core/ports/driven"
)

// CollectionName is the chromem collection holding all records.
const CollectionName = "textvault-records"

// Ensure RecordStore implements the interface.
var _ driven.RecordStore = (*RecordStore)(nil)

// RecordStore is the chromem-backed implementation of driven.RecordStore.
//
// chromem owns the vectors and the similarity query; the adapter keeps
// a mirror of the full records so ListByReference and the documented
// tie-break (insertion order) are available. Ties in Search are broken
// by insertion order.
type RecordStore struct {
	mu         sync.RWMutex
	collection *chromem.Collection
	records    map[string]domain.Record
	order      map[string]int // record ID -> insertion sequence
	seq        int
	dimension  int
}

// NewRecordStore creates an empty chromem record store.
func NewRecordStore() (*RecordStore, error) {
	db := chromem.NewDB()

	// All documents carry precomputed embeddings and queries go through
	// QueryEmbedding, so the collection's embedding func must never run.
	noEmbed := func(_ context.Context, text string) ([]float32, error) {
		return nil, fmt.Errorf("chromem: text embedding not supported, embeddings are precomputed")
	}

	collection, err := db.GetOrCreateCollection(CollectionName, nil, noEmbed)
	if err != nil {
		return nil, fmt.Errorf("creating collection: %w", err)
	}

	return &RecordStore{
		collection: collection,
		records:    make(map[string]domain.Record),
		order:      make(map[string]int),
	}, nil
}

// Insert stores a record and returns its generated ID.
func (s *RecordStore) Insert(ctx context.Context, rec domain.Record) (string, error) {
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

	metaJSON, err := json.Marshal(rec.Meta)
	if err != nil {
		return "", fmt.Errorf("marshalling meta: %w", err)
	}

	rec.ID = uuid.New().String()
	rec.CreatedAt = time.Now().UTC()

	err = s.collection.AddDocument(ctx, chromem.Document{
		ID:      rec.ID,
		Content: rec.Text,
		Metadata: map[string]string{
			"reference_id": rec.ReferenceID,
			"language":     rec.Language,
			"meta":         string(metaJSON),
		},
		Embedding: rec.Embedding,
	})
	if err != nil {
		return "", fmt.Errorf("adding document: %w", err)
	}

	s.records[rec.ID] = rec
	s.order[rec.ID] = s.seq
	s.seq++
	return rec.ID, nil
}

// Delete removes one record. Absent IDs are a no-op.
func (s *RecordStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return nil
	}
	if err := s.collection.Delete(ctx, nil, nil, id); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	delete(s.records, id)
	delete(s.order, id)
	return nil
}

// DeleteByReference removes all records sharing the reference ID.
func (s *RecordStore) DeleteByReference(ctx context.Context, referenceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []string
	for id, rec := range s.records {
		if rec.ReferenceID == referenceID {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	if err := s.collection.Delete(ctx, nil, nil, ids...); err != nil {
		return fmt.Errorf("deleting documents: %w", err)
	}
	for _, id := range ids {
		delete(s.records, id)
		delete(s.order, id)
	}
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
	// map iteration order is random; restore insertion order.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && s.order[out[j-1].ID] > s.order[out[j].ID]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out, nil
}

// Search delegates the similarity query to chromem and applies the
// cutoff and tie-break on the returned candidates.
func (s *RecordStore) Search(ctx context.Context, embedding []float32, cutoff float64, topK int) ([]domain.SearchResult, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("%w: top_k must be positive, got %d", domain.ErrInvalidInput, topK)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.dimension != 0 && len(embedding) != s.dimension {
		return nil, fmt.Errorf("%w: store dimension %d, query dimension %d",
			domain.ErrDimensionMismatch, s.dimension, len(embedding))
	}

	// chromem rejects nResults beyond the collection size.
	n := topK
	if count := s.collection.Count(); n > count {
		n = count
	}
	if n == 0 {
		return nil, nil
	}

	hits, err := s.collection.QueryEmbedding(ctx, embedding, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying collection: %w", err)
	}

	var results []domain.SearchResult
	for _, hit := range hits {
		score := float64(hit.Similarity)
		if score <= cutoff {
			continue
		}
		rec := s.records[hit.ID]
		results = append(results, domain.SearchResult{
			ID:          hit.ID,
			Text:        rec.Text,
			ReferenceID: rec.ReferenceID,
			Score:       score,
		})
	}

	// chromem's own tie order is unspecified; settle ties by insertion.
	for i := 1; i < len(results); i++ {
		for j := i; j > 0 && tieBefore(s.order, results[j], results[j-1]); j-- {
			results[j-1], results[j] = results[j], results[j-1]
		}
	}
	return results, nil
}

func tieBefore(order map[string]int, a, b domain.SearchResult) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return order[a.ID] < order[b.ID]
}

// Count returns the number of stored records.
func (s *RecordStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collection.Count()
}

// Close releases resources.
func (s *RecordStore) Close() error {
	return nil
}
