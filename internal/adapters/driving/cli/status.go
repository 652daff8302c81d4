package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var statusLimit int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recent indexing runs",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().IntVarP(&statusLimit, "limit", "n", 10, "number of runs to show")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	svc, err := requireServices(ctx)
	if err != nil {
		return err
	}

	if st := svc.Indexing.Status(); st.Running {
		cmd.Printf("Indexing in progress: %d/%d sites\n\n", st.SitesProcessed, st.SitesTotal)
	}

	runs, err := svc.Indexing.Runs(ctx, statusLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		cmd.Println("No indexing runs recorded.")
		return nil
	}

	cmd.Println("Recent runs:")
	for _, run := range runs {
		result := "ok"
		if !run.Success() {
			result = "failed: " + run.Error
		}
		mode := ""
		if run.Recreated {
			mode = " (recreated)"
		}
		cmd.Printf("  %s  %s%s\n", run.StartedAt.Local().Format(time.DateTime), result, mode)
		cmd.Printf("      %d chunks, %d/%d sites, %d skipped, %d failed, took %s\n",
			run.Chunks, run.SitesIndexed, run.SitesListed, run.Skipped, run.Failed,
			run.Duration().Round(time.Millisecond))
	}
	return nil
}
