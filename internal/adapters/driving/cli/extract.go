package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/provena/internal/core/domain"
)

var (
	extractJSON bool
	extractFull bool
)

var extractCmd = &cobra.Command{
	Use:   "extract [url]",
	Short: "Extract normalised content from a URL",
	Long: `Extracts the text, title, author and media of a URL.

Video links are read with yt-dlp. Other pages are fetched and parsed as
articles, falling back to a headless browser for script-rendered pages.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().BoolVar(&extractJSON, "json", false, "output content as JSON")
	extractCmd.Flags().BoolVar(&extractFull, "full", false, "print the full text instead of a preview")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	if extractionRouter == nil {
		return errors.New("extraction router not configured")
	}

	content, err := extractionRouter.Extract(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	if extractJSON {
		return printJSON(cmd, content)
	}
	printContent(cmd, content, extractFull)
	return nil
}

func printContent(cmd *cobra.Command, c *domain.NormalizedContent, full bool) {
	cmd.Printf("Platform:  %s\n", c.Platform)
	cmd.Printf("URL:       %s\n", c.URL)
	if c.Title != "" {
		cmd.Printf("Title:     %s\n", c.Title)
	}
	if c.Author != "" {
		cmd.Printf("Author:    %s\n", c.Author)
	}
	if c.PublishedAt != nil {
		cmd.Printf("Published: %s\n", formatTime(*c.PublishedAt))
	}
	for _, m := range c.MediaURLs {
		cmd.Printf("Media:     %s\n", m)
	}
	cmd.Println()
	if full {
		cmd.Println(c.PlainText)
		return
	}
	cmd.Println(preview(c.PlainText, 400))
}
