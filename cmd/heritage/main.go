// Command heritage answers questions about UNESCO World Heritage sites.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/heritage-rag/internal/adapters/driven/config/env"
	"github.com/custodia-labs/heritage-rag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/heritage-rag/internal/adapters/driving/cli"
	"github.com/custodia-labs/heritage-rag/internal/core/services"
	"github.com/custodia-labs/heritage-rag/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := env.LoadDotEnv(); err != nil {
		logger.Warn("%v", err)
	}

	store, err := file.NewConfigStore(os.Getenv("HERITAGE_CONFIG_DIR"))
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}

	cli.SetSettingsService(services.NewSettingsService(store, env.Apply))
	cli.SetBootstrap(bootstrap)
	cli.SetVersion(version)

	return cli.Execute(ctx)
}
