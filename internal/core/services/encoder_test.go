package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/textvault/textvault/internal/core/domain"
)

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
// It embeds each text as a vector derived from its batch-global index,
// and records the sub-batches it received.
type mockEmbeddingService struct {
	dims     int
	calls    [][]string
	embedErr error
	short    bool // return one vector fewer than requested
	next     int
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	m.calls = append(m.calls, texts)

	n := len(texts)
	if m.short && n > 0 {
		n--
	}
	out := make([][]float32, n)
	for i := range out {
		vec := make([]float32, m.dims)
		vec[0] = float32(m.next)
		m.next++
		out[i] = vec
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int              { return m.dims }
func (m *mockEmbeddingService) ModelName() string            { return "mock-embed" }
func (m *mockEmbeddingService) Ping(_ context.Context) error { return nil }
func (m *mockEmbeddingService) Close() error                 { return nil }

// --- Tests ---

func TestEncode_OrderPreserved(t *testing.T) {
	mock := &mockEmbeddingService{dims: 3}
	enc := NewEncoder(mock)

	texts := make([]string, 10)
	for i := range texts {
		texts[i] = fmt.Sprintf("text-%d", i)
	}

	embeddings, err := enc.Encode(context.Background(), texts, 3)
	require.NoError(t, err)
	require.Len(t, embeddings, 10)

	// The mock encodes the global position into component 0.
	for i, vec := range embeddings {
		assert.Equal(t, float32(i), vec[0], "embedding %d out of order", i)
	}
}

func TestEncode_SubBatchPartitioning(t *testing.T) {
	mock := &mockEmbeddingService{dims: 2}
	enc := NewEncoder(mock)

	texts := []string{"a", "b", "c", "d", "e", "f", "g"}
	_, err := enc.Encode(context.Background(), texts, 3)
	require.NoError(t, err)

	require.Len(t, mock.calls, 3)
	assert.Equal(t, []string{"a", "b", "c"}, mock.calls[0])
	assert.Equal(t, []string{"d", "e", "f"}, mock.calls[1])
	assert.Equal(t, []string{"g"}, mock.calls[2])
}

func TestEncode_SingleBatchWhenLarger(t *testing.T) {
	mock := &mockEmbeddingService{dims: 2}
	enc := NewEncoder(mock)

	_, err := enc.Encode(context.Background(), []string{"a", "b"}, 32)
	require.NoError(t, err)
	require.Len(t, mock.calls, 1)
}

func TestEncode_InvalidBatchSize(t *testing.T) {
	enc := NewEncoder(&mockEmbeddingService{dims: 2})

	for _, size := range []int{0, -1} {
		_, err := enc.Encode(context.Background(), []string{"a"}, size)
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	}
}

func TestEncode_EmptyInput(t *testing.T) {
	mock := &mockEmbeddingService{dims: 2}
	enc := NewEncoder(mock)

	embeddings, err := enc.Encode(context.Background(), nil, 8)
	require.NoError(t, err)
	assert.Empty(t, embeddings)
	assert.Empty(t, mock.calls, "no external call for empty input")
}

func TestEncode_CapabilityFailure(t *testing.T) {
	boom := errors.New("model unreachable")
	enc := NewEncoder(&mockEmbeddingService{dims: 2, embedErr: boom})

	_, err := enc.Encode(context.Background(), []string{"a"}, 8)
	require.ErrorIs(t, err, boom)
}

func TestEncode_CountMismatch(t *testing.T) {
	enc := NewEncoder(&mockEmbeddingService{dims: 2, short: true})

	_, err := enc.Encode(context.Background(), []string{"a", "b"}, 8)
	require.ErrorIs(t, err, domain.ErrEmbeddingCount)
}

func TestEncode_NoService(t *testing.T) {
	enc := NewEncoder(nil)
	_, err := enc.Encode(context.Background(), []string{"a"}, 8)
	require.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestEncodeOne(t *testing.T) {
	mock := &mockEmbeddingService{dims: 4}
	enc := NewEncoder(mock)

	vec, err := enc.EncodeOne(context.Background(), "query text")
	require.NoError(t, err)
	assert.Len(t, vec, 4)
	require.Len(t, mock.calls, 1)
	assert.Equal(t, []string{"query text"}, mock.calls[0])
}
