package extract

import (
	"context"

	"github.com/custodia-labs/provena/internal/core/domain"
	"github.com/custodia-labs/provena/internal/core/ports/driven"
)

// Ensure BrowserExtractor implements the interface.
var _ driven.Extractor = (*BrowserExtractor)(nil)

// BrowserExtractor renders the page in a headless browser before readability,
// for pages whose body is built by scripts.
type BrowserExtractor struct {
	renderer  driven.BrowserRenderer
	parser    driven.ArticleParser
	minLength int
}

// NewBrowserExtractor creates the fallback strategy.
func NewBrowserExtractor(renderer driven.BrowserRenderer, parser driven.ArticleParser, minLength int) *BrowserExtractor {
	return &BrowserExtractor{renderer: renderer, parser: parser, minLength: minLength}
}

// Name returns the strategy name.
func (e *BrowserExtractor) Name() string {
	return "browser"
}

// IsEligible accepts any absolute http(s) URL when a renderer is configured.
func (e *BrowserExtractor) IsEligible(rawURL string) bool {
	return e.renderer != nil && isWebURL(rawURL)
}

// Extract renders the page and parses the resulting markup.
func (e *BrowserExtractor) Extract(ctx context.Context, rawURL string) (*domain.NormalizedContent, error) {
	page, err := e.renderer.Render(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return readArticle(ctx, e.parser, page, rawURL, e.minLength)
}
