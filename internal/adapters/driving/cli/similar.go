package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/provena/internal/core/domain"
)

var (
	similarJSON  bool
	similarLimit int
)

var similarCmd = &cobra.Command{
	Use:   "similar [text]",
	Short: "Find traced claims similar to a piece of text",
	Long: `Embeds the text and ranks previously traced primary claims by
cosine similarity. Requires an embedding provider.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSimilar,
}

func init() {
	similarCmd.Flags().BoolVar(&similarJSON, "json", false, "output matches as JSON")
	similarCmd.Flags().IntVarP(&similarLimit, "limit", "n", domain.DefaultSimilarThoughts, "maximum number of matches")
	rootCmd.AddCommand(similarCmd)
}

func runSimilar(cmd *cobra.Command, args []string) error {
	if traceService == nil {
		return errors.New("trace service not configured")
	}

	matches, err := traceService.GetSimilarThoughts(cmd.Context(), strings.Join(args, " "), similarLimit)
	if err != nil {
		return fmt.Errorf("similarity lookup failed: %w", err)
	}

	if similarJSON {
		return printJSON(cmd, matches)
	}
	if len(matches) == 0 {
		cmd.Println("No traced claims yet.")
		return nil
	}
	for i, m := range matches {
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, m.Content, m.Similarity)
		cmd.Printf("      id: %s  origin: %s\n", m.ID, m.Origin)
	}
	return nil
}
