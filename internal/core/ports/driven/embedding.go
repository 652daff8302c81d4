package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// The same implementation and model must be used at index time and at
// query time. Vectors from different models are not comparable.
//
// Implementations may include:
//   - Ollama (nomic-embed-text)
//   - OpenAI (text-embedding-3-small)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts in one request.
	// The i-th vector returned belongs to the i-th text.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 768, 1536).
	// This is determined by the model and must match the collection.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
