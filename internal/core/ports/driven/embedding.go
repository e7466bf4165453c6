package driven

import "context"

// EmbeddingService generates vector embeddings from text.
// This is the external model capability: deterministic for a fixed model,
// producing vectors of a fixed dimension per deployment.
//
// Implementations may include:
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Ollama (nomic-embed-text, all-minilm)
//   - Local models via inference servers
type EmbeddingService interface {
	// EmbedBatch generates one embedding per text, preserving order.
	// One call corresponds to one invocation of the external model;
	// sub-batching to bound peak resource use is the caller's job.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 512, 768, 1536).
	// This is determined by the model and must match the record store.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
