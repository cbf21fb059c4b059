package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	historyUser  string
	historyLimit int
	historyJSON  bool
	quotaUser    string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List a user's past searches",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var quotaCmd = &cobra.Command{
	Use:   "quota",
	Short: "Show a user's remaining trace quota",
	Args:  cobra.NoArgs,
	RunE:  runQuota,
}

func init() {
	historyCmd.Flags().StringVarP(&historyUser, "user", "u", defaultUser(), "user whose history to list")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of entries")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "output entries as JSON")
	quotaCmd.Flags().StringVarP(&quotaUser, "user", "u", defaultUser(), "user whose quota to show")
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(quotaCmd)
}

// defaultUser is the login name, used when --user is not given.
func defaultUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "local"
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}

	entries, err := historyService.List(cmd.Context(), historyUser, historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	if historyJSON {
		return printJSON(cmd, entries)
	}

	if len(entries) == 0 {
		cmd.Println("No history.")
		return nil
	}
	for _, e := range entries {
		cmd.Printf("  %s  %-6s  %s\n", formatTime(e.CreatedAt), e.Kind, preview(e.Query, 80))
		if e.ResultRef != "" {
			cmd.Printf("      ref %s\n", e.ResultRef)
		}
	}
	return nil
}

func runQuota(cmd *cobra.Command, _ []string) error {
	if quotaService == nil {
		return errors.New("quota service not configured")
	}

	rec, remaining, err := quotaService.Status(cmd.Context(), quotaUser)
	if err != nil {
		return fmt.Errorf("failed to read quota: %w", err)
	}

	cmd.Printf("User:      %s\n", quotaUser)
	cmd.Printf("Used:      %d\n", rec.Count)
	cmd.Printf("Remaining: %d\n", remaining)
	if !rec.WindowStart.IsZero() {
		cmd.Printf("Window:    since %s\n", formatTime(rec.WindowStart))
	}
	return nil
}
