package cli

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/heritage-rag/internal/adapters/driving/tui"
	"github.com/custodia-labs/heritage-rag/internal/logger"
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for asking questions
about World Heritage sites.

Controls:
  Enter          - Ask the question
  Tab/Shift+Tab  - Cycle the country filter
  Ctrl+X         - Clear the country filter
  ↑/↓            - Select a source
  PgUp/PgDn      - Scroll the answer
  Esc            - Clear the answer / leave help
  F1             - Toggle help
  Ctrl+C         - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	ctx := commandContext(cmd)
	svc, err := requireServices(ctx)
	if err != nil {
		return err
	}

	app, err := tui.NewApp(tui.NewPorts(svc.Answer, svc.Countries))
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(ctx)

	// Log lines would tear the alternate screen.
	if !logger.IsVerbose() {
		logger.SetOutput(io.Discard)
		defer logger.SetOutput(os.Stderr)
	}

	// TUI is long-running, so scheduled re-indexing runs alongside it.
	stop := startScheduler(ctx, svc)
	defer stop()

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
