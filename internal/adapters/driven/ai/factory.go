// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	ollamaembed "github.com/custodia-labs/heritage-rag/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/heritage-rag/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/heritage-rag/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/heritage-rag/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/heritage-rag/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/heritage-rag/internal/core/domain"
	"github.com/custodia-labs/heritage-rag/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// CreateEmbeddingService creates the embedding service selected by settings.
// dimension is the collection dimension the service must produce.
func CreateEmbeddingService(settings domain.EmbeddingSettings, dimension int) (driven.EmbeddingService, error) {
	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dimension,
		}), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dimension,
		})

	case domain.AIProviderAnthropic:
		return nil, fmt.Errorf("%w: anthropic does not support embeddings, use ollama or openai",
			domain.ErrInvalidInput)

	default:
		return nil, fmt.Errorf("%w: unsupported embedding provider: %q", domain.ErrInvalidInput, settings.Provider)
	}
}

// CreateLLMService creates the generation service selected by settings.
func CreateLLMService(settings domain.LLMSettings) (driven.LLMService, error) {
	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("%w: unsupported LLM provider: %q", domain.ErrInvalidInput, settings.Provider)
	}
}

// Pinger is any service with a connectivity check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Ping checks connectivity with a short timeout.
func Ping(ctx context.Context, svc Pinger) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}
