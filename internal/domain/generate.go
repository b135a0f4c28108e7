package domain

import "context"

// Generator is the hosted generative-model contract used for chunk
// summaries and final answers.
type Generator interface {
	Generate(ctx context.Context, prompt string) (GenerationResult, error)
}

// GenerationResult carries the generated text and token usage.
type GenerationResult struct {
	Text         string
	PromptTokens int
	TotalTokens  int
}
