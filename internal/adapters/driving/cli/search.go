package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/provena/internal/core/domain"
)

var (
	searchKind string
	searchUser string
	searchJSON bool
)

var searchCmd = &cobra.Command{
	Use:   "search [content]",
	Short: "Find where content has appeared across platforms",
	Long: `Searches Reddit, YouTube, X, news outlets, GitHub and the web for a URL,
a piece of text or a media link, and reports the earliest appearance found
together with the moments it went viral.

Results are cached, and searches by a user are rate limited.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchKind, "kind", "k", "", "input kind: url, text or media (default: detect)")
	searchCmd.Flags().StringVarP(&searchUser, "user", "u", "", "user for rate limiting and history")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	input := searchInput(args[0], searchKind)
	result, err := searchService.Search(cmd.Context(), input, searchUser)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return printJSON(cmd, result)
	}

	return outputSearchTable(cmd, result)
}

// searchInput detects a URL when no kind is given.
func searchInput(content, kind string) domain.SearchInput {
	if kind != "" {
		return domain.SearchInput{Kind: domain.InputKind(kind), Content: content}
	}
	in := domain.SearchInput{Kind: domain.InputKindURL, Content: content}
	if !in.IsWellFormed() {
		in.Kind = domain.InputKindText
	}
	return in
}

func outputSearchTable(cmd *cobra.Command, result *domain.SearchResult) error {
	if result.OriginalSource == nil && len(result.ViralMoments) == 0 {
		cmd.Println("No results found.")
		for _, s := range result.SuggestedSearches {
			cmd.Printf("  Try: %s\n", s)
		}
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	if src := result.OriginalSource; src != nil {
		cmd.Println("Original source:")
		cmd.Printf("  %s (%s)\n", src.URL, src.Platform)
		cmd.Printf("  %s  confidence %.2f\n", formatTime(src.Timestamp), src.ConfidenceScore)
		cmd.Println()
	}

	if len(result.ViralMoments) > 0 {
		cmd.Println("Viral moments:")
		for i, m := range result.ViralMoments {
			cmd.Printf("  [%d] %s  %s\n", i+1, formatTime(m.Timestamp), m.Platform)
			cmd.Printf("      %s\n", m.URL)
			if m.Metrics != nil {
				cmd.Printf("      views %d  shares %d  likes %d\n",
					m.Metrics.ViewsOrZero(), m.Metrics.SharesOrZero(), m.Metrics.LikesOrZero())
			}
		}
		cmd.Println()
	}

	cmd.Printf("Confidence: %.2f across %d platforms\n", result.ConfidenceScore, len(result.Platforms))
	return nil
}
