package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *EmbeddingService) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := NewEmbeddingService(Config{
		APIKey:            "test-key",
		BaseURL:           srv.URL,
		Model:             "text-embedding-3-small",
		Dimensions:        3,
		RequestsPerSecond: 1000,
	})
	require.NoError(t, err)
	return srv, svc
}

func TestNewEmbeddingService_RequiresAPIKey(t *testing.T) {
	_, err := NewEmbeddingService(Config{})
	require.Error(t, err)
}

func TestEmbedBatch_OrderedByIndex(t *testing.T) {
	_, svc := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		// Respond with indices reversed; the adapter must reorder.
		resp := map[string]any{
			"data": []map[string]any{
				{"index": 1, "embedding": []float64{0, 1, 0}},
				{"index": 0, "embedding": []float64{1, 0, 0}},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	})

	embeddings, err := svc.EmbedBatch(context.Background(), []string{"first", "second"})
	require.NoError(t, err)
	require.Len(t, embeddings, 2)
	assert.Equal(t, []float32{1, 0, 0}, embeddings[0])
	assert.Equal(t, []float32{0, 1, 0}, embeddings[1])
}

func TestEmbedBatch_CountMismatch(t *testing.T) {
	_, svc := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		resp := map[string]any{
			"data": []map[string]any{
				{"index": 0, "embedding": []float64{1, 0, 0}},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	})

	_, err := svc.EmbedBatch(context.Background(), []string{"a", "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "got 1 embeddings for 2 inputs")
}

func TestEmbedBatch_APIError(t *testing.T) {
	_, svc := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limit"}}`))
	})

	_, err := svc.EmbedBatch(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestEmbedBatch_EmptyInput(t *testing.T) {
	_, svc := newTestServer(t, func(_ http.ResponseWriter, _ *http.Request) {
		t.Fatal("no request expected for empty input")
	})

	embeddings, err := svc.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, embeddings)
}

func TestPing(t *testing.T) {
	_, svc := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, svc.Ping(context.Background()))
}
