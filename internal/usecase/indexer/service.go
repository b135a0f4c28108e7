// Package indexer runs the ingestion pipeline for one uploaded document:
// partition, summarize each chunk, embed each summary, upsert into the
// vector index.
package indexer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docdex/internal/domain"
	"github.com/kailas-cloud/docdex/internal/metrics"
	"github.com/kailas-cloud/docdex/internal/retry"
)

// ChunkFailure records one chunk that could not be indexed.
type ChunkFailure struct {
	Sequence int
	Type     domain.ChunkType
	Err      error
}

// Report summarizes one indexing run. Indexed counts entries actually
// upserted; failed chunks are listed, never silently dropped.
type Report struct {
	Source  string
	Total   int
	Indexed int
	Failed  []ChunkFailure
}

// Service is the indexing pipeline.
type Service struct {
	partitioner Partitioner
	generator   Generator
	embedder    Embedder
	index       Writer
	retry       retry.Policy
	callTimeout time.Duration
	logger      *zap.Logger
}

// New creates an indexer service.
func New(
	partitioner Partitioner,
	generator Generator,
	embedder Embedder,
	index Writer,
	logger *zap.Logger,
) *Service {
	return &Service{
		partitioner: partitioner,
		generator:   generator,
		embedder:    embedder,
		index:       index,
		retry:       retry.Default(),
		callTimeout: 60 * time.Second,
		logger:      logger,
	}
}

// WithRetry overrides the model-call retry schedule.
func (s *Service) WithRetry(p retry.Policy) *Service {
	s.retry = p
	return s
}

// WithCallTimeout bounds each individual model API call.
func (s *Service) WithCallTimeout(d time.Duration) *Service {
	if d > 0 {
		s.callTimeout = d
	}
	return s
}

// IndexDocument runs the full pipeline for one document. A parse failure
// aborts the document with no entries written. A failing chunk is recorded
// in the report and does not block its siblings. A run that indexes nothing
// is an error, not a silent success.
func (s *Service) IndexDocument(ctx context.Context, doc []byte, source string) (Report, error) {
	report := Report{Source: source}

	chunks, err := s.partitioner.Partition(ctx, doc, source)
	if err != nil {
		return report, fmt.Errorf("partition %s: %w", source, err)
	}
	report.Total = len(chunks)

	s.logger.Info("document partitioned",
		zap.String("source", source),
		zap.Int("chunks", len(chunks)),
	)

	for i, chunk := range chunks {
		if err := s.indexChunk(ctx, chunks, i); err != nil {
			report.Failed = append(report.Failed, ChunkFailure{
				Sequence: chunk.Sequence,
				Type:     chunk.Type,
				Err:      err,
			})
			metrics.IndexerChunksTotal.WithLabelValues(string(chunk.Type), "failed").Inc()
			s.logger.Warn("chunk failed",
				zap.String("source", source),
				zap.Int("sequence", chunk.Sequence),
				zap.String("type", string(chunk.Type)),
				zap.Error(err),
			)
			continue
		}
		report.Indexed++
		metrics.IndexerChunksTotal.WithLabelValues(string(chunk.Type), "indexed").Inc()
	}

	if report.Indexed == 0 {
		return report, fmt.Errorf("no entries indexed for %s: %w", source, domain.ErrNoChunks)
	}

	s.logger.Info("document indexed",
		zap.String("source", source),
		zap.Int("indexed", report.Indexed),
		zap.Int("failed", len(report.Failed)),
	)
	return report, nil
}

// indexChunk summarizes, embeds, and upserts a single chunk.
func (s *Service) indexChunk(ctx context.Context, chunks []domain.Chunk, i int) error {
	chunk := chunks[i]

	summary, err := s.summarize(ctx, summaryPrompt(chunks, i))
	if err != nil {
		return fmt.Errorf("summarize: %w", err)
	}

	embedding, err := s.embed(ctx, summary)
	if err != nil {
		return fmt.Errorf("embed summary: %w", err)
	}

	entry := domain.NewIndexEntry(chunk, summary, embedding)
	if err := s.index.Upsert(ctx, entry); err != nil {
		return fmt.Errorf("upsert: %w", err)
	}
	return nil
}

func (s *Service) summarize(ctx context.Context, prompt string) (string, error) {
	var text string
	err := s.retry.Do(ctx, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
		defer cancel()

		result, err := s.generator.Generate(callCtx, prompt)
		if err != nil {
			return err
		}
		text = result.Text
		return nil
	})
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", fmt.Errorf("empty summary: %w", domain.ErrProviderError)
	}
	return text, nil
}

func (s *Service) embed(ctx context.Context, text string) ([]float32, error) {
	var vec []float32
	err := s.retry.Do(ctx, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
		defer cancel()

		result, err := s.embedder.Embed(callCtx, text)
		if err != nil {
			return err
		}
		vec = result.Embedding
		return nil
	})
	if err != nil {
		return nil, err
	}
	return vec, nil
}
