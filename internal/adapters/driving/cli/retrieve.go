package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/heritage-rag/internal/core/domain"
)

var (
	retrieveCountry string
	retrieveJSON    bool
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Show the passages retrieved for a query",
	Long: `Embeds the query and prints the most similar indexed passages with
their scores, without calling the language model.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRetrieve,
}

func init() {
	retrieveCmd.Flags().StringVarP(&retrieveCountry, "country", "c", "", "only use sites in this country")
	retrieveCmd.Flags().BoolVar(&retrieveJSON, "json", false, "output passages as JSON")
	rootCmd.AddCommand(retrieveCmd)
}

type passageJSON struct {
	SiteName string  `json:"site_name"`
	Country  string  `json:"country"`
	URL      string  `json:"url"`
	Score    float64 `json:"score"`
	Text     string  `json:"text"`
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))

	svc, err := requireServices(commandContext(cmd))
	if err != nil {
		return err
	}

	hits, err := svc.Retriever.Search(commandContext(cmd), query, domain.FilterFromCountry(retrieveCountry))
	if err != nil {
		return fmt.Errorf("retrieve failed: %w", err)
	}

	if retrieveJSON {
		out := make([]passageJSON, len(hits))
		for i, h := range hits {
			p := h.Record.Payload
			out[i] = passageJSON{SiteName: p.SiteName, Country: p.Country, URL: p.SourceURL, Score: h.Score, Text: p.Text}
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal passages: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(hits) == 0 {
		cmd.Println("No passages found.")
		return nil
	}

	for i, h := range hits {
		p := h.Record.Payload
		cmd.Printf("  [%d] %s (%s) %.3f\n", i+1, p.SiteName, p.Country, h.Score)
		cmd.Printf("      %s\n", truncate(p.Text, 200))
		cmd.Println()
	}
	return nil
}

// truncate shortens s to at most n runes on one line.
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
