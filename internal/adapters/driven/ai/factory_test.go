package ai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/heritage-rag/internal/core/domain"
)

func TestCreateEmbeddingService(t *testing.T) {
	tests := []struct {
		name      string
		settings  domain.EmbeddingSettings
		wantModel string
		wantErr   error
	}{
		{
			name:      "ollama",
			settings:  domain.EmbeddingSettings{Provider: domain.AIProviderOllama, Model: "nomic-embed-text"},
			wantModel: "nomic-embed-text",
		},
		{
			name:      "openai",
			settings:  domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI, APIKey: "sk", Model: "text-embedding-3-small"},
			wantModel: "text-embedding-3-small",
		},
		{
			name:     "openai without key",
			settings: domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI},
			wantErr:  domain.ErrInvalidInput,
		},
		{
			name:     "anthropic has no embeddings",
			settings: domain.EmbeddingSettings{Provider: domain.AIProviderAnthropic, APIKey: "k"},
			wantErr:  domain.ErrInvalidInput,
		},
		{
			name:     "unknown provider",
			settings: domain.EmbeddingSettings{Provider: "cohere"},
			wantErr:  domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbeddingService(tt.settings, 768)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantModel, svc.ModelName())
			assert.Equal(t, 768, svc.Dimensions())
		})
	}
}

func TestCreateLLMService(t *testing.T) {
	tests := []struct {
		name     string
		settings domain.LLMSettings
		wantErr  bool
	}{
		{name: "ollama", settings: domain.LLMSettings{Provider: domain.AIProviderOllama}},
		{name: "openai", settings: domain.LLMSettings{Provider: domain.AIProviderOpenAI, APIKey: "sk"}},
		{name: "anthropic", settings: domain.LLMSettings{Provider: domain.AIProviderAnthropic, APIKey: "k"}},
		{name: "anthropic without key", settings: domain.LLMSettings{Provider: domain.AIProviderAnthropic}, wantErr: true},
		{name: "unknown", settings: domain.LLMSettings{Provider: "nope"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateLLMService(tt.settings)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, svc.ModelName())
			assert.NoError(t, svc.Close())
		})
	}
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestPing_SetsDeadline(t *testing.T) {
	err := Ping(context.Background(), pingFunc(func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		assert.True(t, ok)
		return errors.New("down")
	}))
	assert.EqualError(t, err, "down")
}

func TestPing_Ollama(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	svc, err := CreateLLMService(domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: srv.URL})
	require.NoError(t, err)
	assert.NoError(t, Ping(context.Background(), svc))
}
