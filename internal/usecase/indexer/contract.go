package indexer

import (
	"context"

	"github.com/kailas-cloud/docdex/internal/domain"
)

// Partitioner produces typed chunks from document bytes.
type Partitioner interface {
	Partition(ctx context.Context, doc []byte, source string) ([]domain.Chunk, error)
}

// Writer persists entries into the vector index.
type Writer interface {
	Upsert(ctx context.Context, entry domain.IndexEntry) error
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Generator produces chunk summaries.
type Generator interface {
	Generate(ctx context.Context, prompt string) (domain.GenerationResult, error)
}
