package cli

import (
	"fmt"
	"os"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/provena/internal/adapters/driving/tui"
)

var tuiUser string

// runProgram starts the bubbletea program. Tests replace it.
var runProgram = func(app *tui.App) error {
	return app.Run()
}

var tuiCmd = &cobra.Command{
	Use:   "tui [content]",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal UI for tracing content.

Paste a URL or a quote and press enter to see where it first appeared and
where it spread. Select an appearance to trace its URL in turn.

Controls:
  Enter    - Trace / open actions
  ↑/k, ↓/j - Navigate appearances
  n        - New trace
  Esc      - Back / Cancel
  ?        - Toggle help
  q        - Quit`,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().StringVarP(&tuiUser, "user", "u", defaultUser(), "user for rate limiting and history")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("tui panicked: %v", r)
		}
	}()

	app, err := tui.NewApp(tui.NewPorts(searchService, extractionRouter))
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context()).WithUser(tuiUser)
	if len(args) > 0 {
		app.WithQuery(strings.Join(args, " "))
	}

	return runProgram(app)
}
