package services

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/heritage-rag/internal/core/domain"
	"github.com/custodia-labs/heritage-rag/internal/core/ports/driven"
	"github.com/custodia-labs/heritage-rag/internal/core/ports/driving"
	"github.com/custodia-labs/heritage-rag/internal/logger"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyIndexBackend    = "index.backend"
	keyIndexCollection = "index.collection"
	keyIndexDimension  = "index.dimension"
	keyIndexPath       = "index.path"
	keyIndexDSN        = "index.dsn"
	keyIndexRefresh    = "index.refresh_interval"
	keyEmbedProvider   = "embedding.provider"
	keyEmbedModel      = "embedding.model"
	keyEmbedBaseURL    = "embedding.base_url"
	keyEmbedAPIKey     = "embedding.api_key"
	keyLLMProvider     = "llm.provider"
	keyLLMModel        = "llm.model"
	keyLLMBaseURL      = "llm.base_url"
	keyLLMAPIKey       = "llm.api_key"
	keyTopK            = "retrieval.top_k"
	keyChunkSize       = "chunking.size"
	keyChunkOverlap    = "chunking.overlap"
	keySiteLimit       = "fetch.site_limit"
	keyFetchInterval   = "fetch.interval"
	keyUserAgent       = "fetch.user_agent"
	keyLanguage        = "fetch.language"
	keyServerAddr      = "server.addr"
)

// Overlay adjusts loaded settings, typically from the environment.
type Overlay func(domain.Settings) (domain.Settings, error)

// field binds a config key to a settings field. parse writes a raw value
// into s and leaves s untouched on error. stored returns the typed value
// persisted for the key.
type field struct {
	parse  func(s *domain.Settings, raw string) error
	stored func(s *domain.Settings) any
}

var fields = map[string]field{
	keyIndexBackend: {
		parse: func(s *domain.Settings, raw string) error {
			b := domain.IndexBackend(raw)
			if !b.IsValid() {
				return fmt.Errorf("unknown backend %q", raw)
			}
			s.Index.Backend = b
			return nil
		},
		stored: func(s *domain.Settings) any { return s.Index.Backend.String() },
	},
	keyIndexCollection: stringField(func(s *domain.Settings) *string { return &s.Index.Collection }, true),
	keyIndexDimension:  intField(func(s *domain.Settings) *int { return &s.Index.Dimension }, 1),
	keyIndexPath:       stringField(func(s *domain.Settings) *string { return &s.Index.Path }, false),
	keyIndexDSN:        stringField(func(s *domain.Settings) *string { return &s.Index.DSN }, false),
	keyEmbedProvider:   providerField(func(s *domain.Settings) *domain.AIProvider { return &s.Embedding.Provider }, true),
	keyEmbedModel:      stringField(func(s *domain.Settings) *string { return &s.Embedding.Model }, true),
	keyEmbedBaseURL:    stringField(func(s *domain.Settings) *string { return &s.Embedding.BaseURL }, false),
	keyEmbedAPIKey:     stringField(func(s *domain.Settings) *string { return &s.Embedding.APIKey }, false),
	keyLLMProvider:     providerField(func(s *domain.Settings) *domain.AIProvider { return &s.LLM.Provider }, false),
	keyLLMModel:        stringField(func(s *domain.Settings) *string { return &s.LLM.Model }, true),
	keyLLMBaseURL:      stringField(func(s *domain.Settings) *string { return &s.LLM.BaseURL }, false),
	keyLLMAPIKey:       stringField(func(s *domain.Settings) *string { return &s.LLM.APIKey }, false),
	keyTopK:            intField(func(s *domain.Settings) *int { return &s.Retrieval.TopK }, 1),
	keyChunkSize:       intField(func(s *domain.Settings) *int { return &s.Chunking.Size }, 1),
	keyChunkOverlap:    intField(func(s *domain.Settings) *int { return &s.Chunking.Overlap }, 0),
	keySiteLimit:       intField(func(s *domain.Settings) *int { return &s.Fetch.SiteLimit }, 0),
	keyIndexRefresh:    durationField(func(s *domain.Settings) *time.Duration { return &s.Index.RefreshInterval }),
	keyFetchInterval:   durationField(func(s *domain.Settings) *time.Duration { return &s.Fetch.Interval }),
	keyUserAgent:       stringField(func(s *domain.Settings) *string { return &s.Fetch.UserAgent }, true),
	keyLanguage:        stringField(func(s *domain.Settings) *string { return &s.Fetch.Language }, true),
	keyServerAddr:      stringField(func(s *domain.Settings) *string { return &s.Server.Addr }, true),
}

func stringField(ptr func(*domain.Settings) *string, required bool) field {
	return field{
		parse: func(s *domain.Settings, raw string) error {
			raw = strings.TrimSpace(raw)
			if required && raw == "" {
				return errors.New("must not be empty")
			}
			*ptr(s) = raw
			return nil
		},
		stored: func(s *domain.Settings) any { return *ptr(s) },
	}
}

func intField(ptr func(*domain.Settings) *int, minimum int) field {
	return field{
		parse: func(s *domain.Settings, raw string) error {
			n, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil {
				return fmt.Errorf("not an integer: %q", raw)
			}
			if n < minimum {
				return fmt.Errorf("must be at least %d", minimum)
			}
			*ptr(s) = n
			return nil
		},
		stored: func(s *domain.Settings) any { return *ptr(s) },
	}
}

func durationField(ptr func(*domain.Settings) *time.Duration) field {
	return field{
		parse: func(s *domain.Settings, raw string) error {
			d, err := time.ParseDuration(strings.TrimSpace(raw))
			if err != nil {
				return err
			}
			if d < 0 {
				return errors.New("must not be negative")
			}
			*ptr(s) = d
			return nil
		},
		stored: func(s *domain.Settings) any { return ptr(s).String() },
	}
}

func providerField(ptr func(*domain.Settings) *domain.AIProvider, embedding bool) field {
	return field{
		parse: func(s *domain.Settings, raw string) error {
			p := domain.AIProvider(strings.ToLower(strings.TrimSpace(raw)))
			if !p.IsValid() {
				return fmt.Errorf("unknown provider %q", raw)
			}
			if embedding && !p.SupportsEmbedding() {
				return fmt.Errorf("%s does not offer embeddings", p)
			}
			*ptr(s) = p
			return nil
		},
		stored: func(s *domain.Settings) any { return ptr(s).String() },
	}
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	overlay     Overlay
}

// NewSettingsService creates a new settings service. overlay may be nil.
func NewSettingsService(configStore driven.ConfigStore, overlay Overlay) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		overlay:     overlay,
	}
}

// Get retrieves current application settings. Stored values that fail to
// parse are ignored in favour of the default.
func (s *SettingsService) Get() (*domain.Settings, error) {
	settings := domain.DefaultSettings()

	for _, key := range s.Keys() {
		value, ok := s.configStore.Get(key)
		if !ok {
			continue
		}
		if err := fields[key].parse(&settings, fmt.Sprint(value)); err != nil {
			logger.Warn("Ignoring %s from config: %v", key, err)
		}
	}

	if s.overlay != nil {
		overlaid, err := s.overlay(settings)
		if err != nil {
			return nil, err
		}
		settings = overlaid
	}

	return &settings, nil
}

// Set parses value for key and persists it. Cross-field consistency is
// left to Validate so related keys can be set one at a time.
func (s *SettingsService) Set(key, value string) error {
	f, ok := fields[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	settings := domain.DefaultSettings()
	if err := f.parse(&settings, value); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, key, err)
	}

	return s.configStore.Set(key, f.stored(&settings))
}

// Reset removes key from the config file.
func (s *SettingsService) Reset(key string) error {
	if _, ok := fields[key]; !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	return s.configStore.Unset(key)
}

// Keys returns the settable keys in sorted order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Path returns the config file path.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}

// Validate checks settings for consistency and reports every problem found.
func (s *SettingsService) Validate(settings *domain.Settings) error {
	if settings == nil {
		return fmt.Errorf("%w: no settings", domain.ErrInvalidInput)
	}

	var problems []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			problems = append(problems, fmt.Errorf(format, args...))
		}
	}

	idx := settings.Index
	check(idx.Backend.IsValid(), "index.backend: unknown backend %q", idx.Backend)
	check(idx.Backend != domain.IndexBackendPgvector || idx.DSN != "",
		"index.dsn: required for the pgvector backend")
	check(strings.TrimSpace(idx.Collection) != "", "index.collection: must not be empty")
	check(idx.Dimension > 0, "index.dimension: must be positive")
	check(idx.RefreshInterval >= 0, "index.refresh_interval: must not be negative")

	emb := settings.Embedding
	check(emb.Provider.SupportsEmbedding(), "embedding.provider: %q does not offer embeddings", emb.Provider)
	check(emb.Model != "", "embedding.model: must not be empty")
	check(!emb.Provider.RequiresAPIKey() || emb.APIKey != "",
		"embedding.api_key: required for %s", emb.Provider)

	llm := settings.LLM
	check(llm.Provider.IsValid(), "llm.provider: unknown provider %q", llm.Provider)
	check(llm.Model != "", "llm.model: must not be empty")
	check(!llm.Provider.RequiresAPIKey() || llm.APIKey != "",
		"llm.api_key: required for %s", llm.Provider)

	check(settings.Retrieval.TopK > 0, "retrieval.top_k: must be positive")

	chunking := settings.Chunking
	check(chunking.Size > 0, "chunking.size: must be positive")
	check(chunking.Overlap >= 0 && chunking.Overlap < chunking.Size,
		"chunking.overlap: must be between 0 and chunking.size")

	fetch := settings.Fetch
	check(fetch.SiteLimit >= 0, "fetch.site_limit: must not be negative")
	check(fetch.Interval >= 0, "fetch.interval: must not be negative")
	check(fetch.UserAgent != "", "fetch.user_agent: must not be empty")
	check(fetch.Language != "", "fetch.language: must not be empty")
	check(settings.Server.Addr != "", "server.addr: must not be empty")

	if len(problems) > 0 {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, errors.Join(problems...))
	}
	return nil
}
