package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/provena/internal/core/domain"
)

var (
	legacyMax  int
	legacyJSON bool
)

var legacyCmd = &cobra.Command{
	Use:   "legacy [query]",
	Short: "Run a single-shot evidence search over free text",
	Long: `Searches the web for free text without extracting or ranking claims.
Results are scored by rank and recency. No quota is consumed.`,
	Args: cobra.ExactArgs(1),
	RunE: runLegacy,
}

func init() {
	legacyCmd.Flags().IntVarP(&legacyMax, "max", "n", domain.DefaultLegacyMaxResults, "maximum number of results")
	legacyCmd.Flags().BoolVar(&legacyJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(legacyCmd)
}

func runLegacy(cmd *cobra.Command, args []string) error {
	if traceService == nil {
		return errors.New("trace service not configured")
	}

	resp, err := traceService.Search(cmd.Context(), domain.TraceRequest{
		Mode:   domain.TraceModeLegacy,
		Legacy: domain.LegacyQuery{Text: args[0], MaxResults: legacyMax},
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if legacyJSON {
		return printJSON(cmd, resp.Legacy)
	}

	if len(resp.Legacy) == 0 {
		cmd.Println("No results found.")
		return nil
	}
	for i, r := range resp.Legacy {
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, r.Title, r.ViralityScore)
		cmd.Printf("      %s  %s\n", r.Platform, r.URL)
		if r.Timestamp != nil {
			cmd.Printf("      %s\n", formatTime(*r.Timestamp))
		}
		if r.Snippet != "" {
			cmd.Printf("      %s\n", preview(r.Snippet, 160))
		}
		cmd.Println()
	}
	return nil
}
