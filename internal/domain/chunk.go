package domain

// ChunkType classifies a unit of content extracted from a document.
type ChunkType string

const (
	// ChunkText is a plain text block (paragraph or heading group).
	ChunkText ChunkType = "text"
	// ChunkTable is a structured table.
	ChunkTable ChunkType = "table"
	// ChunkImage is a description of an embedded image.
	ChunkImage ChunkType = "image"
)

// Chunk is one semantically coherent unit extracted from a source document.
// Chunks are ordered by Sequence within a document and immutable once produced.
type Chunk struct {
	Source   string // object path of the originating document
	Sequence int    // position within the document, starting at 0
	Type     ChunkType
	Page     int // 1-based page number, 0 when unknown
	Text     string
}

// Preview returns the first n runes of the chunk text for metadata storage.
func (c Chunk) Preview(n int) string {
	r := []rune(c.Text)
	if len(r) <= n {
		return c.Text
	}
	return string(r[:n])
}
