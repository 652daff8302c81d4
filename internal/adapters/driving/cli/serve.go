package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/heritage-rag/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/heritage-rag/internal/logger"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API.

Routes:
  POST /ask          {"question": "...", "filters": {"country": "..."}}
  POST /retrieve     {"query": "...", "filters": {"country": "..."}}
  GET  /get_filters  list of indexed countries
  GET  /healthz      liveness check

When index.refresh_interval is set, the index is rebuilt periodically
while the server runs.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "listen address (default from server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)

	addr := serveAddr
	if addr == "" {
		settings, err := currentSettings()
		if err != nil {
			return fmt.Errorf("failed to load settings: %w", err)
		}
		addr = settings.Server.Addr
	}

	svc, err := requireServices(ctx)
	if err != nil {
		return err
	}

	cfg := httpapi.Config{}
	if logger.IsVerbose() {
		cfg.AccessLog = os.Stderr
	}
	server, err := httpapi.NewServer(&httpapi.Ports{
		Answer:    svc.Answer,
		Retriever: svc.Retriever,
		Countries: svc.Countries,
	}, cfg)
	if err != nil {
		return err
	}

	stop := startScheduler(ctx, svc)
	defer stop()

	cmd.Printf("HTTP API listening on %s\n", addr)
	return server.Run(ctx, addr)
}

// startScheduler starts periodic re-indexing in the background when it is
// enabled and returns a function that stops it.
func startScheduler(ctx context.Context, svc *Services) func() {
	if svc.Scheduler == nil {
		return func() {}
	}

	schedulerCtx, cancel := context.WithCancel(ctx)
	go func() {
		if err := svc.Scheduler.Start(schedulerCtx); err != nil && schedulerCtx.Err() == nil {
			logger.Warn("scheduler stopped: %v", err)
		}
	}()

	// Cancel first so an in-flight run aborts instead of delaying shutdown.
	return func() {
		cancel()
		if err := svc.Scheduler.Stop(); err != nil {
			logger.Warn("scheduler stop error: %v", err)
		}
	}
}
