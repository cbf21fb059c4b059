package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/provena/internal/core/domain"
)

var thoughtsJSON bool

var thoughtsCmd = &cobra.Command{
	Use:   "thoughts [primary-id]",
	Short: "Show a traced claim and its secondary claims",
	Args:  cobra.ExactArgs(1),
	RunE:  runThoughts,
}

func init() {
	thoughtsCmd.Flags().BoolVar(&thoughtsJSON, "json", false, "output thoughts as JSON")
	rootCmd.AddCommand(thoughtsCmd)
}

func runThoughts(cmd *cobra.Command, args []string) error {
	if traceService == nil {
		return errors.New("trace service not configured")
	}

	ctx := cmd.Context()
	primary, err := traceService.GetPrimaryThought(ctx, args[0])
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("no trace with id %s", args[0])
		}
		return fmt.Errorf("failed to load trace: %w", err)
	}
	secondary, err := traceService.GetSecondaryThoughts(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to load secondary thoughts: %w", err)
	}

	if thoughtsJSON {
		return printJSON(cmd, struct {
			Primary   *domain.PrimaryThought `json:"primary"`
			Secondary []domain.Thought       `json:"secondary"`
		}{primary, secondary})
	}

	cmd.Printf("Primary: %s\n", primary.Content)
	cmd.Printf("  Origin: %s  Viral: %t  Evidence: %d\n", primary.Origin, primary.Viral, len(primary.Evidence))
	cmd.Println()
	if len(secondary) == 0 {
		cmd.Println("No secondary claims.")
		return nil
	}
	cmd.Println("Secondary:")
	for i, t := range secondary {
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, t.Content, t.Score)
	}
	return nil
}
