package driven

import "context"

// EmbeddingProvider maps text to fixed-dimension vectors. The core treats it
// as a black-box scoring function with a declared dimensionality.
//
// Failure classification: implementations wrap retryable failures (timeouts,
// connection errors, rate limits, 5xx) in domain.ErrEmbeddingTransient and
// non-retryable ones (oversized input, unsupported content, 4xx) in
// domain.ErrEmbeddingPermanent, so the knowledge service can decide between
// retry-with-backoff and persist-without-vector per chunk.
//
// Implementations may include:
//   - Ollama (nomic-embed-text, all-minilm)
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
type EmbeddingProvider interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts. The core calls
	// this once per ingestion batch rather than once per chunk.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 768, 1536).
	// Fixed for the lifetime of a store instance; changing it invalidates
	// previously stored embeddings.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the provider is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
