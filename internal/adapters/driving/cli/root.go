// Package cli provides the provena command line interface built on cobra.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/provena/internal/logger"
)

// version is set at build time with -ldflags "-X .../cli.version=...".
var version = "dev"

var (
	verbose   bool
	configDir string
)

// skipServices marks commands that run without the service graph.
const skipServices = "skip-services"

var rootCmd = &cobra.Command{
	Use:   "provena",
	Short: "Trace where content came from and how it spread",
	Long: `Provena extracts content from a URL, breaks it into claims, and traces
each claim back through the web and social platforms to find where it first
appeared and where it went viral.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		if cmd.Annotations[skipServices] == "true" {
			return nil
		}
		return initServices(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.provena)")
}

// Execute runs the root command.
func Execute(ctx context.Context) int {
	defer closeServices()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Error("%v", err)
		return 1
	}
	return 0
}

// SetVersion overrides the reported version.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}
