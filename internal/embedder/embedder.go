package embedder

import "context"

// Embedder converts text into fixed-dimension vectors. Implementations must
// return vectors in input order and keep the dimension stable across calls.
type Embedder interface {
	// Embed returns one vector per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	// EmbedOne embeds a single text.
	EmbedOne(ctx context.Context, text string) ([]float32, error)
	// Dimension is the length of every vector the embedder produces.
	Dimension() int
}
