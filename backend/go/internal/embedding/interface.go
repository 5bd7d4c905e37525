package embedding

import "context"

// Embedding converts text into vectors suitable for similarity search.
// Implementations must return vectors of a fixed dimension matching the
// memory collection schema.
type Embedding interface {
	// Embed generates an embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embedding vectors for a batch of texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
