package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/provena/internal/core/domain"
)

var (
	traceUser string
	traceJSON bool
)

var traceCmd = &cobra.Command{
	Use:   "trace [url]",
	Short: "Trace the main claim of a page back to its origin",
	Long: `Extracts the content of a URL, breaks it into claims with the LLM,
ranks them by embedding centrality and LLM salience, then gathers web
evidence for the primary claim and classifies its origin.

Each trace consumes one unit of the user's quota.`,
	Args: cobra.ExactArgs(1),
	RunE: runTrace,
}

func init() {
	traceCmd.Flags().StringVarP(&traceUser, "user", "u", defaultUser(), "user the trace is charged to")
	traceCmd.Flags().BoolVar(&traceJSON, "json", false, "output the trace as JSON")
	rootCmd.AddCommand(traceCmd)
}

func runTrace(cmd *cobra.Command, args []string) error {
	if extractionRouter == nil || traceService == nil {
		return errors.New("trace service not configured")
	}

	ctx := cmd.Context()
	content, err := extractionRouter.Extract(ctx, args[0])
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	resp, err := traceService.Search(ctx, domain.TraceRequest{
		Mode:    domain.TraceModePipeline,
		UserID:  traceUser,
		Content: content,
	})
	if err != nil {
		return fmt.Errorf("trace failed: %w", err)
	}

	if traceJSON {
		return printJSON(cmd, resp.Trace)
	}
	printTrace(cmd, resp.Trace)
	return nil
}

func printTrace(cmd *cobra.Command, r *domain.TraceResult) {
	p := r.PrimaryThought
	cmd.Println("Primary claim:")
	cmd.Printf("  %s\n", p.Content)
	cmd.Printf("  ID: %s  Score: %.2f\n", p.ID, p.Score)
	cmd.Printf("  Origin: %s\n", p.Origin)
	if p.Viral {
		cmd.Println("  Viral: yes")
	} else {
		cmd.Println("  Viral: no")
	}
	cmd.Println()

	if len(p.Evidence) == 0 {
		cmd.Println("No evidence found.")
	} else {
		cmd.Println("Evidence:")
		for i, e := range p.Evidence {
			cmd.Printf("  [%d] %s\n", i+1, e.Title)
			cmd.Printf("      %s\n", e.URL)
		}
	}
	cmd.Println()
	cmd.Printf("%d secondary claims. Run 'provena thoughts %s' to list them.\n", r.SecondaryCount, p.ID)
}
