// Package query answers a user question in one pass: embed the question,
// retrieve nearest neighbors, compose a single grounded prompt, generate.
// No iterative refinement and no verification step.
package query

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docdex/internal/domain"
	"github.com/kailas-cloud/docdex/internal/retry"
)

const answerPromptHeader = "Answer the question using only the context passages below. " +
	"Each passage is a summary of part of a source document. If the context does not " +
	"contain the answer, say so.\n\n"

// Service is the question-answering pipeline.
type Service struct {
	index       Reader
	embedder    Embedder
	generator   Generator
	retry       retry.Policy
	callTimeout time.Duration
	defaultTopK int
	maxTopK     int
	logger      *zap.Logger
}

// New creates a query service.
func New(index Reader, embedder Embedder, generator Generator, logger *zap.Logger) *Service {
	return &Service{
		index:       index,
		embedder:    embedder,
		generator:   generator,
		retry:       retry.Default(),
		callTimeout: 60 * time.Second,
		defaultTopK: 5,
		maxTopK:     20,
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

// WithTopK configures neighbor count limits.
func (s *Service) WithTopK(defaultTopK, maxTopK int) *Service {
	if defaultTopK > 0 {
		s.defaultTopK = defaultTopK
	}
	if maxTopK > 0 {
		s.maxTopK = maxTopK
	}
	return s
}

// Answer runs the query pipeline. k <= 0 selects the default neighbor count.
// Neighbors come back in the store's similarity order and are passed to the
// prompt in that order.
func (s *Service) Answer(ctx context.Context, question string, k int) (domain.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return domain.Answer{}, fmt.Errorf("question is required")
	}

	if k <= 0 {
		k = s.defaultTopK
	}
	if k > s.maxTopK {
		k = s.maxTopK
	}

	embedding, err := s.embedQuestion(ctx, question)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("embed question: %w", err)
	}

	neighbors, err := s.index.Query(ctx, embedding, k)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("neighbor lookup: %w", err)
	}
	if len(neighbors) == 0 {
		return domain.Answer{}, fmt.Errorf("no indexed context for question: %w", domain.ErrNotFound)
	}

	answer, err := s.generate(ctx, composePrompt(question, neighbors))
	if err != nil {
		return domain.Answer{}, fmt.Errorf("generate answer: %w", err)
	}

	s.logger.Debug("question answered",
		zap.Int("neighbors", len(neighbors)),
		zap.Int("answer_chars", len(answer)),
	)

	return domain.Answer{Text: answer, Sources: neighbors}, nil
}

// composePrompt assembles instructions, retrieved context, and the question
// into one generative prompt.
func composePrompt(question string, neighbors []domain.Neighbor) string {
	var b strings.Builder
	b.WriteString(answerPromptHeader)

	for i, n := range neighbors {
		source := n.Metadata[domain.MetaSource]
		page := n.Metadata[domain.MetaPageNumber]
		fmt.Fprintf(&b, "[%d] (%s, page %s) %s\n\n", i+1, source, page, n.Summary)
	}

	b.WriteString("Question: ")
	b.WriteString(question)
	return b.String()
}

func (s *Service) embedQuestion(ctx context.Context, question string) ([]float32, error) {
	var vec []float32
	err := s.retry.Do(ctx, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
		defer cancel()

		result, err := s.embedder.Embed(callCtx, question)
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

func (s *Service) generate(ctx context.Context, prompt string) (string, error) {
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
	return text, nil
}
