package query

import (
	"context"

	"github.com/kailas-cloud/docdex/internal/domain"
)

// Reader performs nearest-neighbor lookups against the vector index.
type Reader interface {
	Query(ctx context.Context, vector []float32, k int) ([]domain.Neighbor, error)
}

// Embedder vectorizes the query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Generator produces the final answer.
type Generator interface {
	Generate(ctx context.Context, prompt string) (domain.GenerationResult, error)
}
