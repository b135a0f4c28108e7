package indexer

import (
	"strings"

	"github.com/kailas-cloud/docdex/internal/domain"
)

// Fixed summary prompt templates per chunk type. Summaries are optimized for
// retrieval, not for reading: key concepts and definitions must survive.
const (
	textPromptHeader = "Summarize the central idea of the following text for search purposes. " +
		"Preserve important concepts and definitions.\n\n"
	tablePromptHeader = "Summarize what the following table shows for search purposes. " +
		"Preserve column names, key figures, and the relationships between them.\n\n"
	imagePromptHeader = "Rewrite the following image description as a short summary suitable " +
		"for semantic search.\n\n"
)

// summaryPrompt builds the generative prompt for chunk i. Text chunks carry
// their neighboring chunks as context, so a summary can resolve references
// that cross block boundaries; tables and images stand alone.
func summaryPrompt(chunks []domain.Chunk, i int) string {
	chunk := chunks[i]

	switch chunk.Type {
	case domain.ChunkTable:
		return tablePromptHeader + chunk.Text
	case domain.ChunkImage:
		return imagePromptHeader + chunk.Text
	default:
		return textPromptHeader + contextWindow(chunks, i)
	}
}

// contextWindow joins the previous, current, and next chunk texts.
func contextWindow(chunks []domain.Chunk, i int) string {
	parts := make([]string, 0, 3)
	if i > 0 {
		parts = append(parts, chunks[i-1].Text)
	}
	parts = append(parts, chunks[i].Text)
	if i < len(chunks)-1 {
		parts = append(parts, chunks[i+1].Text)
	}
	return strings.Join(parts, "\n\n")
}
