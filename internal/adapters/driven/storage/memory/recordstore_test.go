package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/textvault/textvault/internal/core/domain"
)

func insertVec(t *testing.T, s *RecordStore, refID string, vec []float32) string {
	t.Helper()
	id, err := s.Insert(context.Background(), domain.Record{
		Text:        "text for " + refID,
		ReferenceID: refID,
		Embedding:   vec,
	})
	require.NoError(t, err)
	return id
}

func TestInsert_GeneratesUniqueIDs(t *testing.T) {
	s := NewRecordStore()

	id1 := insertVec(t, s, "a", []float32{1, 0, 0})
	id2 := insertVec(t, s, "a", []float32{0, 1, 0})

	assert.NotEmpty(t, id1)
	assert.NotEmpty(t, id2)
	assert.NotEqual(t, id1, id2)
	assert.Equal(t, 2, s.Count())
}

func TestInsert_EmptyEmbedding(t *testing.T) {
	s := NewRecordStore()
	_, err := s.Insert(context.Background(), domain.Record{Text: "x"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestInsert_DimensionMismatch(t *testing.T) {
	s := NewRecordStore()
	insertVec(t, s, "a", []float32{1, 0, 0})

	_, err := s.Insert(context.Background(), domain.Record{
		Text:      "wrong",
		Embedding: []float32{1, 0},
	})
	require.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestSearch_ExactMatch(t *testing.T) {
	s := NewRecordStore()
	id := insertVec(t, s, "a", []float32{1, 0, 0})

	results, err := s.Search(context.Background(), []float32{1, 0, 0}, 0.2, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, id, results[0].ID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
}

func TestSearch_CutoffFiltersOrthogonal(t *testing.T) {
	s := NewRecordStore()
	insertVec(t, s, "a", []float32{1, 0, 0})
	insertVec(t, s, "b", []float32{0, 1, 0})

	// Orthogonal vector scores 0, which is not above cutoff 0.2.
	results, err := s.Search(context.Background(), []float32{1, 0, 0}, 0.2, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].ReferenceID)
}

func TestSearch_RankedDescending(t *testing.T) {
	s := NewRecordStore()
	insertVec(t, s, "low", []float32{1, 1, 0})
	insertVec(t, s, "high", []float32{1, 0, 0})
	insertVec(t, s, "mid", []float32{2, 1, 0})

	results, err := s.Search(context.Background(), []float32{1, 0, 0}, -1, 10)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "high", results[0].ReferenceID)
	assert.Equal(t, "mid", results[1].ReferenceID)
	assert.Equal(t, "low", results[2].ReferenceID)
	assert.True(t, results[0].Score >= results[1].Score)
	assert.True(t, results[1].Score >= results[2].Score)
}

func TestSearch_TopKTruncates(t *testing.T) {
	s := NewRecordStore()
	for i := 0; i < 5; i++ {
		insertVec(t, s, "a", []float32{1, 0, 0})
	}

	results, err := s.Search(context.Background(), []float32{1, 0, 0}, 0.2, 3)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestSearch_TiesKeepInsertionOrder(t *testing.T) {
	s := NewRecordStore()
	first := insertVec(t, s, "a", []float32{1, 0, 0})
	second := insertVec(t, s, "a", []float32{1, 0, 0})

	results, err := s.Search(context.Background(), []float32{1, 0, 0}, 0.2, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, first, results[0].ID)
	assert.Equal(t, second, results[1].ID)
}

func TestSearch_DimensionMismatch(t *testing.T) {
	s := NewRecordStore()
	insertVec(t, s, "a", []float32{1, 0, 0})

	_, err := s.Search(context.Background(), []float32{1, 0}, 0.2, 10)
	require.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestDelete_Idempotent(t *testing.T) {
	s := NewRecordStore()
	id := insertVec(t, s, "a", []float32{1, 0, 0})

	ctx := context.Background()
	require.NoError(t, s.Delete(ctx, id))
	assert.Equal(t, 0, s.Count())

	// Deleting again, and deleting an unknown ID, are both no-ops.
	require.NoError(t, s.Delete(ctx, id))
	require.NoError(t, s.Delete(ctx, "never-existed"))
}

func TestDeleteByReference(t *testing.T) {
	s := NewRecordStore()
	insertVec(t, s, "doc-1", []float32{1, 0, 0})
	insertVec(t, s, "doc-1", []float32{0, 1, 0})
	insertVec(t, s, "doc-2", []float32{0, 0, 1})

	ctx := context.Background()
	require.NoError(t, s.DeleteByReference(ctx, "doc-1"))
	assert.Equal(t, 1, s.Count())

	// Zero matches is not an error.
	require.NoError(t, s.DeleteByReference(ctx, "doc-1"))
	require.NoError(t, s.DeleteByReference(ctx, "missing"))
	assert.Equal(t, 1, s.Count())
}

func TestDeleteByReference_ThenSearch(t *testing.T) {
	s := NewRecordStore()
	insertVec(t, s, "A", []float32{1, 0, 0})
	insertVec(t, s, "B", []float32{0, 1, 0})

	ctx := context.Background()
	require.NoError(t, s.DeleteByReference(ctx, "A"))

	// A is gone, B is orthogonal (score 0 <= cutoff 0.2).
	results, err := s.Search(ctx, []float32{1, 0, 0}, 0.2, 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestListByReference(t *testing.T) {
	s := NewRecordStore()
	id1 := insertVec(t, s, "doc-1", []float32{1, 0, 0})
	insertVec(t, s, "doc-2", []float32{0, 1, 0})
	id2 := insertVec(t, s, "doc-1", []float32{0, 0, 1})

	records, err := s.ListByReference(context.Background(), "doc-1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, id1, records[0].ID)
	assert.Equal(t, id2, records[1].ID)

	empty, err := s.ListByReference(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
