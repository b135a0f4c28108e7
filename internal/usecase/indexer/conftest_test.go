package indexer

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docdex/internal/domain"
)

// --- Mocks ---

type mockPartitioner struct {
	chunks []domain.Chunk
	err    error
}

func (m *mockPartitioner) Partition(_ context.Context, _ []byte, _ string) ([]domain.Chunk, error) {
	return m.chunks, m.err
}

// mockGenerator echoes the prompt back as the summary so tests can inspect
// what was asked. failOn marks prompts (by substring) that should error.
type mockGenerator struct {
	mu      sync.Mutex
	prompts []string
	failOn  string
	err     error
}

func (m *mockGenerator) Generate(_ context.Context, prompt string) (domain.GenerationResult, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if m.err != nil {
		return domain.GenerationResult{}, m.err
	}
	if m.failOn != "" && strings.Contains(prompt, m.failOn) {
		return domain.GenerationResult{}, fmt.Errorf("generation rejected: %w", domain.ErrProviderError)
	}
	return domain.GenerationResult{Text: "summary of: " + prompt}, nil
}

type mockEmbedder struct {
	mu     sync.Mutex
	texts  []string
	failOn string
	err    error
	vec    []float32
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.mu.Lock()
	m.texts = append(m.texts, text)
	m.mu.Unlock()

	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	if m.failOn != "" && strings.Contains(text, m.failOn) {
		return domain.EmbeddingResult{}, fmt.Errorf("embed rejected: %w", domain.ErrProviderError)
	}
	vec := m.vec
	if vec == nil {
		vec = []float32{0.1, 0.2, 0.3}
	}
	return domain.EmbeddingResult{Embedding: vec, TotalTokens: 7}, nil
}

type mockWriter struct {
	mu      sync.Mutex
	entries []domain.IndexEntry
	err     error
}

func (m *mockWriter) Upsert(_ context.Context, entry domain.IndexEntry) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	m.entries = append(m.entries, entry)
	m.mu.Unlock()
	return nil
}

func testChunks(source string) []domain.Chunk {
	return []domain.Chunk{
		{Source: source, Sequence: 0, Type: domain.ChunkText, Page: 1, Text: "Widgets are small parts."},
		{Source: source, Sequence: 1, Type: domain.ChunkTable, Page: 2, Text: "name   qty\nwidget 4"},
		{Source: source, Sequence: 2, Type: domain.ChunkText, Page: 2, Text: "Gadgets combine widgets."},
	}
}

func newTestService(p Partitioner, g Generator, e Embedder, w Writer) *Service {
	return New(p, g, e, w, zap.NewNop())
}
