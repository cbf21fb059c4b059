package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/provena/internal/core/domain"
	"github.com/custodia-labs/provena/internal/core/ports/driven"
)

// Ensure HTTPFetcher implements the interface.
var _ driven.PageFetcher = (*HTTPFetcher)(nil)

// Fetcher defaults.
const (
	DefaultFetchTimeout = 20 * time.Second
	DefaultMaxPageBytes = 5 << 20
)

// FetcherConfig holds configuration for HTTPFetcher.
type FetcherConfig struct {
	// UserAgent is sent with every request (default: domain.DefaultUserAgent).
	UserAgent string

	// Timeout is the request timeout (default: 20s).
	Timeout time.Duration

	// MaxBytes caps the body read (default: 5 MiB).
	MaxBytes int64
}

// HTTPFetcher downloads page markup.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
}

// NewHTTPFetcher creates a page fetcher.
func NewHTTPFetcher(cfg FetcherConfig) *HTTPFetcher {
	if cfg.UserAgent == "" {
		cfg.UserAgent = domain.DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultFetchTimeout
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxPageBytes
	}
	return &HTTPFetcher{
		client:    &http.Client{Timeout: cfg.Timeout},
		userAgent: cfg.UserAgent,
		maxBytes:  cfg.MaxBytes,
	}
}

// Fetch GETs rawURL and returns the body. Non-2xx statuses and non-HTML
// content types are extraction failures.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", domain.ErrExtractionFailed, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: fetch %s: %w", domain.ErrExtractionFailed, rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: fetch %s: status %d", domain.ErrExtractionFailed, rawURL, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !isMarkup(ct) {
		return nil, fmt.Errorf("%w: fetch %s: unsupported content type %s", domain.ErrExtractionFailed, rawURL, ct)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrExtractionFailed, rawURL, err)
	}
	return body, nil
}

func isMarkup(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "html") || strings.Contains(ct, "xml") || strings.HasPrefix(ct, "text/plain")
}
