package extract

import (
	"context"
	"net/url"
	"strings"

	"github.com/custodia-labs/provena/internal/core/domain"
	"github.com/custodia-labs/provena/internal/core/ports/driven"
)

// Ensure ArticleExtractor implements the interface.
var _ driven.Extractor = (*ArticleExtractor)(nil)

// ArticleExtractor fetches a page over HTTP and applies readability.
type ArticleExtractor struct {
	fetcher   driven.PageFetcher
	parser    driven.ArticleParser
	minLength int
}

// NewArticleExtractor creates the article strategy. minLength <= 0 uses
// domain.MinContentLength.
func NewArticleExtractor(fetcher driven.PageFetcher, parser driven.ArticleParser, minLength int) *ArticleExtractor {
	return &ArticleExtractor{fetcher: fetcher, parser: parser, minLength: minLength}
}

// Name returns the strategy name.
func (e *ArticleExtractor) Name() string {
	return "article"
}

// IsEligible accepts any absolute http(s) URL.
func (e *ArticleExtractor) IsEligible(rawURL string) bool {
	return isWebURL(rawURL)
}

// Extract fetches and parses the page.
func (e *ArticleExtractor) Extract(ctx context.Context, rawURL string) (*domain.NormalizedContent, error) {
	page, err := e.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return readArticle(ctx, e.parser, page, rawURL, e.minLength)
}

// readArticle is the post-processing shared by the article and browser
// strategies: readability, size validation and mapping to NormalizedContent.
func readArticle(ctx context.Context, parser driven.ArticleParser, page []byte, rawURL string, minLength int) (*domain.NormalizedContent, error) {
	article, err := parser.Parse(ctx, page, rawURL)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateContentSize(article.Content, minLength); err != nil {
		return nil, err
	}

	media := []string{}
	if article.LeadImageURL != "" {
		media = append(media, article.LeadImageURL)
	}
	return &domain.NormalizedContent{
		Platform:    domain.PlatformArticle,
		URL:         rawURL,
		Author:      article.Author,
		Title:       article.Title,
		PublishedAt: article.DatePublished,
		PlainText:   article.Content,
		MediaURLs:   media,
	}, nil
}

func isWebURL(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
