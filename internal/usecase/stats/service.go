// Package stats reports the size of the vector index, used to verify that
// indexing runs landed the expected number of entries.
package stats

import (
	"context"
	"fmt"
)

// Counter returns the exact number of entries in the index.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// Stats describes the index matrix: entries x dimensions.
type Stats struct {
	Entries    int
	Dimensions int
	Model      string
}

// Service reads index statistics.
type Service struct {
	index      Counter
	dimensions int
	model      string
}

// New creates a stats service.
func New(index Counter, dimensions int, model string) *Service {
	return &Service{index: index, dimensions: dimensions, model: model}
}

// Stats returns the current entry count and embedding configuration.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	n, err := s.index.Count(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("count index entries: %w", err)
	}
	return Stats{Entries: n, Dimensions: s.dimensions, Model: s.model}, nil
}
