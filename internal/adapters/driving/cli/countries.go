package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var countriesCmd = &cobra.Command{
	Use:   "countries",
	Short: "List the countries present in the index",
	Long:  `Lists the distinct countries of the indexed sites. Any of them can be passed to --country.`,
	Args:  cobra.NoArgs,
	RunE:  runCountries,
}

func init() {
	rootCmd.AddCommand(countriesCmd)
}

func runCountries(cmd *cobra.Command, _ []string) error {
	svc, err := requireServices(commandContext(cmd))
	if err != nil {
		return err
	}
	if svc.Countries == nil {
		return errors.New("country service not configured")
	}

	countries, err := svc.Countries.ListCountries(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to list countries: %w", err)
	}

	if len(countries) == 0 {
		cmd.Println("No countries indexed. Run 'heritage index' first.")
		return nil
	}
	for _, c := range countries {
		cmd.Println(c)
	}
	return nil
}
