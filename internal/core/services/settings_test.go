package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/heritage-rag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/heritage-rag/internal/core/domain"
)

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(), *settings)
	assert.NoError(t, service.Validate(settings))
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("index.backend", "chromem")
	_ = store.Set("index.dimension", int64(1536))
	_ = store.Set("llm.model", "llama3.2")
	_ = store.Set("fetch.interval", "2s")

	settings, err := NewSettingsService(store, nil).Get()

	require.NoError(t, err)
	assert.Equal(t, domain.IndexBackendChromem, settings.Index.Backend)
	assert.Equal(t, 1536, settings.Index.Dimension)
	assert.Equal(t, "llama3.2", settings.LLM.Model)
	assert.Equal(t, 2*time.Second, settings.Fetch.Interval)
}

func TestSettingsService_Get_InvalidValuesReturnDefaults(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("index.backend", "qdrant")
	_ = store.Set("retrieval.top_k", "lots")
	_ = store.Set("embedding.provider", "anthropic")

	settings, err := NewSettingsService(store, nil).Get()

	require.NoError(t, err)
	defaults := domain.DefaultSettings()
	assert.Equal(t, defaults.Index.Backend, settings.Index.Backend)
	assert.Equal(t, defaults.Retrieval.TopK, settings.Retrieval.TopK)
	assert.Equal(t, defaults.Embedding.Provider, settings.Embedding.Provider)
}

func TestSettingsService_Get_AppliesOverlayLast(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("llm.model", "from-file")

	var seen string
	overlay := func(s domain.Settings) (domain.Settings, error) {
		seen = s.LLM.Model
		s.LLM.Model = "from-env"
		return s, nil
	}

	settings, err := NewSettingsService(store, overlay).Get()

	require.NoError(t, err)
	assert.Equal(t, "from-file", seen)
	assert.Equal(t, "from-env", settings.LLM.Model)
}

func TestSettingsService_Get_OverlayError(t *testing.T) {
	overlay := func(s domain.Settings) (domain.Settings, error) {
		return s, domain.ErrInvalidInput
	}

	_, err := NewSettingsService(memory.NewConfigStore(), overlay).Get()

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsService_Set(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	require.NoError(t, service.Set("retrieval.top_k", " 8 "))
	require.NoError(t, service.Set("embedding.provider", "OpenAI"))
	require.NoError(t, service.Set("fetch.interval", "1500ms"))

	val, _ := store.Get("retrieval.top_k")
	assert.Equal(t, 8, val)
	assert.Equal(t, "openai", store.GetString("embedding.provider"))
	assert.Equal(t, "1.5s", store.GetString("fetch.interval"))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, 8, settings.Retrieval.TopK)
	assert.Equal(t, domain.AIProviderOpenAI, settings.Embedding.Provider)
	assert.Equal(t, 1500*time.Millisecond, settings.Fetch.Interval)
}

func TestSettingsService_Set_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown key", "search.mode", "hybrid"},
		{"unknown backend", "index.backend", "qdrant"},
		{"zero dimension", "index.dimension", "0"},
		{"not a number", "retrieval.top_k", "five"},
		{"negative overlap", "chunking.overlap", "-1"},
		{"bad duration", "fetch.interval", "soon"},
		{"negative duration", "fetch.interval", "-1s"},
		{"embedding from anthropic", "embedding.provider", "anthropic"},
		{"empty model", "llm.model", "  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewConfigStore()
			err := NewSettingsService(store, nil).Set(tt.key, tt.value)

			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Empty(t, store.Keys())
		})
	}
}

func TestSettingsService_Reset(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)
	require.NoError(t, service.Set("llm.model", "llama3.2"))

	require.NoError(t, service.Reset("llm.model"))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultLLMModel, settings.LLM.Model)
	assert.ErrorIs(t, service.Reset("nope"), domain.ErrInvalidInput)
}

func TestSettingsService_Keys(t *testing.T) {
	keys := NewSettingsService(memory.NewConfigStore(), nil).Keys()

	assert.IsIncreasing(t, keys)
	assert.Contains(t, keys, "index.backend")
	assert.Contains(t, keys, "retrieval.top_k")
	assert.Contains(t, keys, "server.addr")
}

func TestSettingsService_Validate(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	tests := []struct {
		name    string
		mutate  func(*domain.Settings)
		problem string
	}{
		{"pgvector without dsn", func(s *domain.Settings) { s.Index.Backend = domain.IndexBackendPgvector }, "index.dsn"},
		{"openai embedding without key", func(s *domain.Settings) { s.Embedding.Provider = domain.AIProviderOpenAI }, "embedding.api_key"},
		{"anthropic llm without key", func(s *domain.Settings) { s.LLM.Provider = domain.AIProviderAnthropic }, "llm.api_key"},
		{"anthropic embeddings", func(s *domain.Settings) { s.Embedding.Provider = domain.AIProviderAnthropic }, "embedding.provider"},
		{"overlap not below size", func(s *domain.Settings) { s.Chunking.Overlap = s.Chunking.Size }, "chunking.overlap"},
		{"zero top k", func(s *domain.Settings) { s.Retrieval.TopK = 0 }, "retrieval.top_k"},
		{"empty language", func(s *domain.Settings) { s.Fetch.Language = "" }, "fetch.language"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := domain.DefaultSettings()
			tt.mutate(&settings)

			err := service.Validate(&settings)

			require.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.problem)
		})
	}
}

func TestSettingsService_Validate_ReportsEveryProblem(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)
	settings := domain.DefaultSettings()
	settings.Index.Dimension = 0
	settings.Server.Addr = ""
	settings.Fetch.UserAgent = ""

	err := service.Validate(&settings)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "index.dimension")
	assert.Contains(t, err.Error(), "fetch.user_agent")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.ErrorIs(t, service.Validate(nil), domain.ErrInvalidInput)
}
