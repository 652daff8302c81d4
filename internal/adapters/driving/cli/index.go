package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/heritage-rag/internal/core/domain"
	"github.com/custodia-labs/heritage-rag/internal/core/ports/driving"
)

// progressInterval is how often index progress is polled.
const progressInterval = 500 * time.Millisecond

var (
	indexRecreate bool
	indexLimit    int
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the vector index from Wikipedia",
	Long: `Lists World Heritage sites from Wikidata, fetches each site's Wikipedia
article, splits it into overlapping chunks, embeds every chunk and writes the
records to the vector index.

Sites without an article are skipped. Without --recreate, records are added to
the existing collection, so re-running duplicates them.`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&indexRecreate, "recreate", false, "drop the collection before indexing")
	indexCmd.Flags().IntVarP(&indexLimit, "limit", "n", 0, "maximum number of sites (default from fetch.site_limit, 0 = all)")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)

	opts := domain.IndexOptions{Recreate: indexRecreate, SiteLimit: indexLimit}
	if !cmd.Flags().Changed("limit") {
		settings, err := currentSettings()
		if err != nil {
			return fmt.Errorf("failed to load settings: %w", err)
		}
		opts.SiteLimit = settings.Fetch.SiteLimit
	}
	if opts.SiteLimit < 0 {
		return fmt.Errorf("%w: --limit must not be negative", domain.ErrInvalidInput)
	}

	svc, err := requireServices(ctx)
	if err != nil {
		return err
	}

	if opts.Recreate {
		cmd.Println("Recreating the collection...")
	}
	cmd.Println("Indexing World Heritage sites...")

	report, err := indexWithProgress(ctx, cmd, svc.Indexing, opts)
	if errors.Is(err, domain.ErrIndexingInProgress) {
		return errors.New("an indexing run is already in progress")
	}
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	printReport(cmd, report)
	return nil
}

// indexWithProgress runs indexing while displaying progress updates.
func indexWithProgress(
	ctx context.Context,
	cmd *cobra.Command,
	indexer driving.IndexingService,
	opts domain.IndexOptions,
) (*domain.IndexReport, error) {
	type result struct {
		report *domain.IndexReport
		err    error
	}
	done := make(chan result, 1)
	go func() {
		report, err := indexer.Run(ctx, opts)
		done <- result{report, err}
	}()

	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()

	last := 0
	for {
		select {
		case r := <-done:
			if last > 0 {
				cmd.Println()
			}
			return r.report, r.err
		case <-ticker.C:
			status := indexer.Status()
			if status.Running && status.SitesProcessed > last {
				cmd.Printf("\rFetched %d/%d sites", status.SitesProcessed, status.SitesTotal)
				last = status.SitesProcessed
			}
		}
	}
}

func printReport(cmd *cobra.Command, report *domain.IndexReport) {
	cmd.Printf("Indexed %d chunks from %d of %d sites in %s.\n",
		report.Chunks, report.SitesIndexed, report.SitesListed, report.Duration.Round(time.Millisecond))

	if len(report.Skipped) > 0 {
		cmd.Printf("Skipped %d sites without an article:\n", len(report.Skipped))
		for _, o := range report.Skipped {
			cmd.Printf("  - %s (%s)\n", o.Site.Name, o.Site.Country)
		}
	}
	if len(report.Failed) > 0 {
		cmd.Printf("Failed to fetch %d sites:\n", len(report.Failed))
		for _, o := range report.Failed {
			cmd.Printf("  - %s: %v\n", o.Site.Name, o.Err)
		}
	}
}
