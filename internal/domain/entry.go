package domain

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strconv"
)

// Metadata field names stored alongside each index entry. Every entry must
// resolve back to its source document and chunk, since query results show
// grounding context to the user.
const (
	MetaSource       = "source"
	MetaElementType  = "element_type"
	MetaPageNumber   = "page_number"
	MetaSequenceID   = "sequence_id"
	MetaOriginalText = "original_text"
)

// PreviewRunes bounds the original-text preview kept in entry metadata.
const PreviewRunes = 300

// IndexEntry is one record in the vector index: a summary, its embedding,
// and metadata referencing the originating chunk.
type IndexEntry struct {
	ID       string
	Summary  string
	Vector   []float32
	Metadata map[string]string
}

// NewIndexEntry builds an entry for a summarized chunk. The ID is derived
// from the chunk's source and sequence, so re-indexing the same document
// replaces its entries instead of accumulating duplicates.
func NewIndexEntry(chunk Chunk, summary string, vector []float32) IndexEntry {
	return IndexEntry{
		ID:      EntryID(chunk.Source, chunk.Sequence),
		Summary: summary,
		Vector:  vector,
		Metadata: map[string]string{
			MetaSource:       chunk.Source,
			MetaElementType:  string(chunk.Type),
			MetaPageNumber:   strconv.Itoa(chunk.Page),
			MetaSequenceID:   strconv.Itoa(chunk.Sequence),
			MetaOriginalText: chunk.Preview(PreviewRunes),
		},
	}
}

// EntryID returns the deterministic entry identifier for a source + sequence pair.
func EntryID(source string, sequence int) string {
	h := sha1.Sum([]byte(fmt.Sprintf("%s:%d", source, sequence)))
	return hex.EncodeToString(h[:])
}

// Neighbor is a single nearest-neighbor hit, ordered by the store's
// similarity metric.
type Neighbor struct {
	ID       string
	Score    float64
	Summary  string
	Metadata map[string]string
}

// Answer is the generated response for one query, with the references that
// grounded it.
type Answer struct {
	Text    string
	Sources []Neighbor
}
