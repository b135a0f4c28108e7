// Package llm assembles the model-provider clients shared by the query
// server and the indexer job.
package llm

import (
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docdex/internal/config"
	"github.com/kailas-cloud/docdex/internal/db"
	"github.com/kailas-cloud/docdex/internal/domain"
	"github.com/kailas-cloud/docdex/internal/metrics"
	"github.com/kailas-cloud/docdex/internal/repository/embcache"
	openaiTransport "github.com/kailas-cloud/docdex/internal/transport/openai"
)

// BuildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instruction.
// The instruction prefix goes outermost so the cache key includes it.
func BuildEmbedder(
	llm config.LLMConfig,
	instruction string,
	kv db.KVStore,
	logger *zap.Logger,
) domain.Embedder {
	base := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     llm.APIKey,
		BaseURL:    llm.BaseURL,
		Model:      llm.EmbeddingModel,
		Dimensions: llm.Dimensions,
		Logger:     logger,
	})

	var embedder domain.Embedder = base
	if kv != nil {
		embedder = embcache.New(base, kv, metrics.EmbeddingCacheTotal, logger).
			WithTTL(time.Duration(llm.CacheTTLHours) * time.Hour)
	}

	if instruction != "" {
		return domain.NewInstructionEmbedder(embedder, instruction)
	}

	return embedder
}

// NewGenerator creates the chat-completion client for summarization and
// answer generation.
func NewGenerator(llm config.LLMConfig, logger *zap.Logger) *openaiTransport.Generator {
	return openaiTransport.NewGenerator(&openaiTransport.GeneratorConfig{
		APIKey:  llm.APIKey,
		BaseURL: llm.BaseURL,
		Model:   llm.ChatModel,
		Logger:  logger,
	})
}
