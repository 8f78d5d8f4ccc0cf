package driven

import "context"

// EmbeddingService turns text into vectors. It is the generator side
// only; VectorIndex stores and searches what it produces. Embeddings
// are deterministic: the same (model, text) pair always yields the
// same vector, which keeps tests reproducible and caching sound.
//
// Implementations:
//   - local feature-hashing embedder (offline default)
//   - Ollama (nomic-embed-text, all-MiniLM-L6-v2)
//   - OpenAI (text-embedding-3-small and -large)
type EmbeddingService interface {
	// Embed produces the vector for one text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch produces vectors for multiple texts. Output order
	// equals input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions is the width of every vector this service produces.
	// It must match the dimensionality of the target VectorIndex.
	Dimensions() int

	// ModelName is the model identifier, as recorded in the registry
	// metadata for staleness checks.
	ModelName() string

	// Ping checks the backing service with a lightweight request.
	// Offline implementations return nil.
	Ping(ctx context.Context) error

	// Close releases any client resources.
	Close() error
}
