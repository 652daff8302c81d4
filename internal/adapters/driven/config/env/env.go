// Package env overlays HERITAGE_* environment variables onto settings.
//
// Variables are read with caarlos0/env after an optional .env file has been
// loaded with godotenv. Unset variables leave the incoming value untouched,
// so the overlay composes with defaults and the config file.
package env

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"github.com/custodia-labs/heritage-rag/internal/core/domain"
)

// Prefix is prepended to every variable name.
const Prefix = "HERITAGE_"

type indexVars struct {
	Backend    string `env:"BACKEND"`
	Collection string `env:"COLLECTION"`
	Dimension  int    `env:"DIMENSION"`
	Path       string `env:"PATH"`
	DSN        string `env:"DSN"`

	RefreshInterval time.Duration `env:"REFRESH_INTERVAL"`
}

type providerVars struct {
	Provider string `env:"PROVIDER"`
	Model    string `env:"MODEL"`
	BaseURL  string `env:"BASE_URL"`
	APIKey   string `env:"API_KEY"`
}

type vars struct {
	Index     indexVars    `envPrefix:"INDEX_"`
	Embedding providerVars `envPrefix:"EMBEDDING_"`
	LLM       providerVars `envPrefix:"LLM_"`

	TopK         int           `env:"TOP_K"`
	ChunkSize    int           `env:"CHUNK_SIZE"`
	ChunkOverlap int           `env:"CHUNK_OVERLAP"`
	SiteLimit    int           `env:"SITE_LIMIT"`
	Interval     time.Duration `env:"FETCH_INTERVAL"`
	UserAgent    string        `env:"USER_AGENT"`
	Language     string        `env:"LANGUAGE"`
	ServerAddr   string        `env:"SERVER_ADDR"`
}

// LoadDotEnv loads the given .env files into the process environment
// without overriding variables that are already set. Missing files are
// ignored; with no arguments ./.env is tried.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Apply returns settings with the process environment overlaid.
func Apply(settings domain.Settings) (domain.Settings, error) {
	return ApplyFrom(settings, nil)
}

// ApplyFrom overlays variables from environ, or the process environment when
// environ is nil.
func ApplyFrom(settings domain.Settings, environ map[string]string) (domain.Settings, error) {
	v := fromSettings(settings)
	opts := env.Options{Prefix: Prefix, Environment: environ}
	if err := env.ParseWithOptions(&v, opts); err != nil {
		return settings, fmt.Errorf("%w: environment: %v", domain.ErrInvalidInput, err)
	}
	return v.apply(settings), nil
}

// Environ returns the process environment as a map, for ApplyFrom.
func Environ() map[string]string {
	return env.ToMap(os.Environ())
}

func fromSettings(s domain.Settings) vars {
	return vars{
		Index: indexVars{
			Backend:    string(s.Index.Backend),
			Collection: s.Index.Collection,
			Dimension:  s.Index.Dimension,
			Path:       s.Index.Path,
			DSN:        s.Index.DSN,

			RefreshInterval: s.Index.RefreshInterval,
		},
		Embedding: providerVars{
			Provider: string(s.Embedding.Provider),
			Model:    s.Embedding.Model,
			BaseURL:  s.Embedding.BaseURL,
			APIKey:   s.Embedding.APIKey,
		},
		LLM: providerVars{
			Provider: string(s.LLM.Provider),
			Model:    s.LLM.Model,
			BaseURL:  s.LLM.BaseURL,
			APIKey:   s.LLM.APIKey,
		},
		TopK:         s.Retrieval.TopK,
		ChunkSize:    s.Chunking.Size,
		ChunkOverlap: s.Chunking.Overlap,
		SiteLimit:    s.Fetch.SiteLimit,
		Interval:     s.Fetch.Interval,
		UserAgent:    s.Fetch.UserAgent,
		Language:     s.Fetch.Language,
		ServerAddr:   s.Server.Addr,
	}
}

func (v vars) apply(s domain.Settings) domain.Settings {
	s.Index = domain.IndexSettings{
		Backend:    domain.IndexBackend(v.Index.Backend),
		Collection: v.Index.Collection,
		Dimension:  v.Index.Dimension,
		Path:       v.Index.Path,
		DSN:        v.Index.DSN,

		RefreshInterval: v.Index.RefreshInterval,
	}
	s.Embedding = domain.EmbeddingSettings{
		Provider: domain.AIProvider(v.Embedding.Provider),
		Model:    v.Embedding.Model,
		BaseURL:  v.Embedding.BaseURL,
		APIKey:   v.Embedding.APIKey,
	}
	s.LLM = domain.LLMSettings{
		Provider: domain.AIProvider(v.LLM.Provider),
		Model:    v.LLM.Model,
		BaseURL:  v.LLM.BaseURL,
		APIKey:   v.LLM.APIKey,
	}
	s.Retrieval.TopK = v.TopK
	s.Chunking = domain.ChunkingSettings{Size: v.ChunkSize, Overlap: v.ChunkOverlap}
	s.Fetch = domain.FetchSettings{
		SiteLimit: v.SiteLimit,
		Interval:  v.Interval,
		UserAgent: v.UserAgent,
		Language:  v.Language,
	}
	s.Server.Addr = v.ServerAddr
	return s
}
