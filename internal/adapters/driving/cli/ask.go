package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/heritage-rag/internal/core/domain"
)

var (
	askCountry string
	askJSON    bool
	askContext bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about World Heritage sites",
	Long: `Answers a question from the indexed Wikipedia articles.
The most similar passages are retrieved and given to the language model,
which is instructed to answer from them only.

Use --country to restrict retrieval to sites in one country.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askCountry, "country", "c", "", "only use sites in this country")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	askCmd.Flags().BoolVar(&askContext, "show-context", false, "print the retrieved context")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return fmt.Errorf("%w: no question provided", domain.ErrInvalidInput)
	}

	svc, err := requireServices(commandContext(cmd))
	if err != nil {
		return err
	}

	answer, err := svc.Answer.Ask(commandContext(cmd), question, domain.FilterFromCountry(askCountry))
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		data, err := json.MarshalIndent(answer, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal answer: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if askContext {
		cmd.Println("Context:")
		if answer.Context == "" {
			cmd.Println("  (none)")
		} else {
			cmd.Println(answer.Context)
		}
		cmd.Println()
	}

	cmd.Println(answer.Text)
	printSources(cmd, answer.Sources)
	return nil
}

func printSources(cmd *cobra.Command, sources []domain.Source) {
	cmd.Println()
	if len(sources) == 0 {
		cmd.Println("No sources matched.")
		return
	}
	cmd.Println("Sources:")
	for i, src := range sources {
		cmd.Printf("  [%d] %s (%s)\n", i+1, src.SiteName, src.Country)
		cmd.Printf("      %s\n", src.URL)
	}
}
