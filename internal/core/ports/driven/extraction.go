package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/provena/internal/core/domain"
)

// Extractor is one extraction strategy.
// The router asks IsEligible before calling Extract. IsEligible must be
// cheap and side-effect free.
type Extractor interface {
	// Name identifies the strategy in logs and errors.
	Name() string

	// IsEligible reports whether the strategy can attempt this URL.
	IsEligible(rawURL string) bool

	// Extract produces normalised content or fails. Strategies that enforce a
	// minimum length return domain.ErrContentTooSmall for short text.
	Extract(ctx context.Context, rawURL string) (*domain.NormalizedContent, error)
}

// VideoMetadata is the structured output of the video metadata tool.
type VideoMetadata struct {
	Title       string `json:"title"`
	Uploader    string `json:"uploader"`
	UploadDate  string `json:"upload_date"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
}

// VideoMetadataTool runs an external process that describes a video URL.
// A non-zero exit or malformed output is a hard failure.
type VideoMetadataTool interface {
	Fetch(ctx context.Context, rawURL string) (*VideoMetadata, error)
}

// Article is the output of readability extraction.
type Article struct {
	Title         string
	Author        string
	DatePublished *time.Time
	// Content is the readable body as plain text.
	Content      string
	LeadImageURL string
}

// ArticleParser recovers the readable article from page markup.
type ArticleParser interface {
	// Parse extracts the article from html. pageURL resolves relative links.
	Parse(ctx context.Context, html []byte, pageURL string) (*Article, error)
}

// PageFetcher retrieves raw markup over HTTP.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// BrowserRenderer drives a headless browser.
// Implementations must release the browser session on every path.
type BrowserRenderer interface {
	// Render loads the page, lets scripts run and returns the resulting HTML.
	Render(ctx context.Context, rawURL string) ([]byte, error)

	// Close releases the browser process.
	Close() error
}

// ExclusiveExtractor is implemented by strategies that, once eligible for a
// URL, must be the only strategy attempted for it.
type ExclusiveExtractor interface {
	Exclusive() bool
}
