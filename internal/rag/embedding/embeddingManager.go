package embedding

import "context"

// Embedder turns text into vectors. Implementations must return one vector per input, in input
// order, all of length Dimension().
type Embedder interface {
	GetEmbedding(ctx context.Context, query string) ([]float32, error)
	BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error)
	Dimension() int
}
