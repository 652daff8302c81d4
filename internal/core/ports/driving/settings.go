package driving

import "github.com/custodia-labs/heritage-rag/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current settings: defaults, then the config file,
	// then environment overrides.
	Get() (*domain.Settings, error)

	// Set stores a single dotted key (e.g. "llm.model") in the config file.
	// The value is parsed for the key's type and the resulting settings
	// must validate.
	Set(key, value string) error

	// Reset removes a key from the config file so its default applies.
	Reset(key string) error

	// Keys returns the settable keys.
	Keys() []string

	// Validate checks settings for consistency.
	Validate(settings *domain.Settings) error

	// Path returns the config file path.
	Path() string
}
