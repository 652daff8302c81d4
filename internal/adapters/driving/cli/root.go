// Package cli implements the heritage command line with cobra.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/heritage-rag/internal/core/domain"
	"github.com/custodia-labs/heritage-rag/internal/core/ports/driving"
	"github.com/custodia-labs/heritage-rag/internal/logger"
)

// version is set at build time with -ldflags.
var version = "dev"

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "heritage",
	Short: "Ask questions about UNESCO World Heritage sites",
	Long: `Heritage answers questions about UNESCO World Heritage sites from
their Wikipedia articles.

Build the index once with 'heritage index', then ask with 'heritage ask',
the terminal UI ('heritage tui') or the HTTP API ('heritage serve').`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if verbose {
			logger.SetVerbose(true)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug logs")
}

// Services holds the driving ports the commands call into.
type Services struct {
	Indexing  driving.IndexingService
	Retriever driving.RetrieverService
	Answer    driving.AnswerService
	Countries driving.CountryService

	// Scheduler is nil when periodic re-indexing is disabled.
	Scheduler driving.Scheduler

	// Close releases the backing stores. May be nil.
	Close func() error
}

// Bootstrap builds the services from validated settings.
type Bootstrap func(ctx context.Context, settings *domain.Settings) (*Services, error)

var (
	settingsService driving.SettingsService
	bootstrap       Bootstrap
	services        *Services
)

// SetSettingsService sets the settings service used by every command.
func SetSettingsService(s driving.SettingsService) {
	settingsService = s
}

// SetBootstrap sets how services are built. Services are built lazily, on
// the first command that needs them, so that commands such as 'settings'
// and 'version' work while the index or the model server is unreachable.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetVersion sets the version reported by 'heritage version'.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command and releases services on exit.
func Execute(ctx context.Context) error {
	defer closeServices()
	return rootCmd.ExecuteContext(ctx)
}

// requireServices returns the services, building them on first use.
func requireServices(ctx context.Context) (*Services, error) {
	if services != nil {
		return services, nil
	}
	if settingsService == nil || bootstrap == nil {
		return nil, errors.New("services not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	if err := settingsService.Validate(settings); err != nil {
		return nil, fmt.Errorf("invalid settings (see 'heritage settings show'): %w", err)
	}

	svc, err := bootstrap(ctx, settings)
	if err != nil {
		return nil, err
	}
	services = svc
	return services, nil
}

// currentSettings returns the effective settings, or the defaults when no
// settings service is configured.
func currentSettings() (*domain.Settings, error) {
	if settingsService == nil {
		defaults := domain.DefaultSettings()
		return &defaults, nil
	}
	return settingsService.Get()
}

func closeServices() {
	if services == nil || services.Close == nil {
		return
	}
	if err := services.Close(); err != nil {
		logger.Warn("close services: %v", err)
	}
	services = nil
}

// commandContext returns the command's context, falling back to Background
// when the command is run without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
