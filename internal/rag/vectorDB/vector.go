package vectorDB

import (
	"context"

	"github.com/akolanti/docqa/internal/domain/commonModels"
)

// DataProcessor is a vector index backend. Backends report a corrupt index, or one missing its
// bootstrap metadata, as ragErrors.StoreUnavailable so the Store can rebuild it.
type DataProcessor interface {
	Upsert(ctx context.Context, chunks []commonModels.DocChunk, vectors [][]float32) error
	// Search returns at most topK hits ordered by decreasing score.
	Search(ctx context.Context, vector []float32, topK int) ([]commonModels.SearchHit, error)
	Count(ctx context.Context) (int, error)

	// Reset drops every record and reinitialises an empty index.
	Reset(ctx context.Context) error
	Close() error
}
