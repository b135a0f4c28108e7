// Package index adapts domain index entries and neighbors onto the vector
// store facade. It only translates calls and results; similarity ordering
// comes from the store itself.
package index

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/kailas-cloud/docdex/internal/db"
	"github.com/kailas-cloud/docdex/internal/domain"
)

const (
	fieldSummary = "__summary"
	fieldVector  = "__vector"

	// vectorAlias is the name KNN queries reference; the schema maps it
	// onto the raw hash field via AS.
	vectorAlias = "vector"
)

// entryPrefix namespaces index entry hashes in the store.
var entryPrefix = domain.KeyPrefix + "entry:"

// store is the consumer interface for index operations.
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// HNSWConfig carries index build parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo implements the vector index contract for both pipelines.
type Repo struct {
	store     store
	indexName string
	hnsw      HNSWConfig
}

// New creates an index repository. name is the logical index name from config.
func New(s store, name string) *Repo {
	return &Repo{store: s, indexName: domain.KeyPrefix + name + ":idx"}
}

// WithHNSW sets HNSW build parameters used by EnsureIndex.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	r.hnsw = cfg
	return r
}

// EnsureIndex creates the FT index if it does not exist yet. Idempotent.
func (r *Repo) EnsureIndex(ctx context.Context, dimensions int) error {
	exists, err := r.store.IndexExists(ctx, r.indexName)
	if err != nil {
		return fmt.Errorf("probe index: %w", mapStoreErr(err))
	}
	if exists {
		return nil
	}

	def := &db.IndexDefinition{
		Name:     r.indexName,
		Prefixes: []string{entryPrefix},
		Fields: []db.IndexField{
			{
				Name:              fieldVector,
				Alias:             vectorAlias,
				Type:              db.IndexFieldVector,
				VectorAlgo:        db.VectorHNSW,
				VectorDim:         dimensions,
				VectorDistance:    db.DistanceCosine,
				VectorM:           r.hnsw.M,
				VectorEFConstruct: r.hnsw.EFConstruct,
			},
			{Name: domain.MetaSource, Type: db.IndexFieldTag},
			{Name: domain.MetaSequenceID, Type: db.IndexFieldNumeric},
		},
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index: %w", mapStoreErr(err))
	}
	return nil
}

// Upsert writes an entry keyed by its deterministic ID, replacing any
// previous entry for the same source chunk.
func (r *Repo) Upsert(ctx context.Context, entry domain.IndexEntry) error {
	if entry.ID == "" {
		return fmt.Errorf("entry id is required")
	}
	if len(entry.Vector) == 0 {
		return fmt.Errorf("entry vector is required")
	}

	fields := make(map[string]string, len(entry.Metadata)+2)
	for k, v := range entry.Metadata {
		fields[k] = v
	}
	fields[fieldSummary] = entry.Summary
	fields[fieldVector] = vectorToBytes(entry.Vector)

	if err := r.store.HSet(ctx, entryPrefix+entry.ID, fields); err != nil {
		return fmt.Errorf("upsert entry %s: %w", entry.ID, mapStoreErr(err))
	}
	return nil
}

// Query returns the k nearest neighbors of vector, ordered by the store's
// cosine similarity.
func (r *Repo) Query(ctx context.Context, vector []float32, k int) ([]domain.Neighbor, error) {
	q := &db.KNNQuery{
		IndexName: r.indexName,
		Vector:    vector,
		K:         k,
		ReturnFields: []string{
			fieldSummary, "__vector_score",
			domain.MetaSource, domain.MetaElementType,
			domain.MetaPageNumber, domain.MetaSequenceID, domain.MetaOriginalText,
		},
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("knn query: %w", mapStoreErr(err))
	}
	if sr == nil || sr.Total == 0 {
		return nil, nil
	}

	neighbors := make([]domain.Neighbor, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		neighbors = append(neighbors, parseEntry(entry))
	}
	return neighbors, nil
}

// Count returns the exact number of entries in the index.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.SearchCount(ctx, r.indexName, "*")
	if err != nil {
		return 0, fmt.Errorf("count entries: %w", mapStoreErr(err))
	}
	return n, nil
}

func parseEntry(entry db.SearchEntry) domain.Neighbor {
	n := domain.Neighbor{
		ID:       strings.TrimPrefix(entry.Key, entryPrefix),
		Score:    entry.Score,
		Metadata: make(map[string]string, len(entry.Fields)),
	}
	for k, v := range entry.Fields {
		switch k {
		case fieldSummary:
			n.Summary = v
		case fieldVector:
			// vectors are never returned to callers
		default:
			n.Metadata[k] = v
		}
	}
	return n
}

// mapStoreErr folds store failures into the index-unavailable sentinel;
// there is no local fallback index.
func mapStoreErr(err error) error {
	var dbErr *db.Error
	if errors.As(err, &dbErr) {
		return fmt.Errorf("%w: %s", domain.ErrIndexUnavailable, dbErr.Error())
	}
	return err
}

func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
