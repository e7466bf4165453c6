package cli

import (
	"context"

	"github.com/textvault/textvault/internal/adapters/driven/storage/memory"
	"github.com/textvault/textvault/internal/config"
	"github.com/textvault/textvault/internal/core/services"
)

// stubEmbedder returns the same unit vector for every text, so any
// stored record matches any query with score 1.0.
type stubEmbedder struct {
	calls int
}

func (m *stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.calls++
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0, 0}
	}
	return out, nil
}

func (m *stubEmbedder) Dimensions() int              { return 4 }
func (m *stubEmbedder) ModelName() string            { return "stub" }
func (m *stubEmbedder) Ping(_ context.Context) error { return nil }
func (m *stubEmbedder) Close() error                 { return nil }

// setupTestServices swaps the package-level services for in-memory
// fakes and returns a cleanup restoring the previous state.
func setupTestServices() func() {
	oldCfg := cfg
	oldPipeline := pipelineService
	oldEmbedding := embeddingService
	oldStore := recordStore

	cfg = config.Default()
	store := memory.NewRecordStore()
	emb := &stubEmbedder{}
	embeddingService = emb
	recordStore = store
	pipelineService = services.NewPipelineService(emb, store)

	return func() {
		cfg = oldCfg
		pipelineService = oldPipeline
		embeddingService = oldEmbedding
		recordStore = oldStore
	}
}
