// Package reddit searches Reddit's public search listing.
package reddit

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/provena/internal/core/domain"
	"github.com/custodia-labs/provena/internal/core/ports/driven"
	"github.com/custodia-labs/provena/internal/platforms"
)

// Ensure Searcher implements the interface.
var _ driven.PlatformSearcher = (*Searcher)(nil)

// Defaults.
const (
	DefaultBaseURL = "https://www.reddit.com"
	PageSize       = 25
)

// Config holds configuration for the Reddit searcher.
type Config struct {
	// BaseURL is the site root (default: https://www.reddit.com).
	BaseURL string

	// UserAgent identifies the client; Reddit throttles generic agents hard.
	UserAgent string

	// Timeout is the request timeout.
	Timeout time.Duration
}

// Searcher finds posts that mention the content.
type Searcher struct {
	client    *platforms.Client
	baseURL   string
	userAgent string
}

type listing struct {
	Data struct {
		Children []struct {
			Data post `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type post struct {
	Permalink   string  `json:"permalink"`
	CreatedUTC  float64 `json:"created_utc"`
	Score       int64   `json:"score"`
	NumComments int64   `json:"num_comments"`
}

// New creates a Reddit searcher. Unauthenticated search allows roughly one
// request per second.
func New(cfg Config) *Searcher {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = domain.DefaultUserAgent
	}
	throttle := platforms.NewThrottle(platforms.ThrottleConfig{RequestsPerSecond: 1, Burst: 2})
	return &Searcher{
		client:    platforms.NewClient("reddit", throttle, cfg.Timeout),
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
	}
}

// Platform returns "reddit".
func (s *Searcher) Platform() string {
	return "reddit"
}

// CanHandle accepts text and any well formed URL.
func (s *Searcher) CanHandle(_ context.Context, input domain.SearchInput) bool {
	return platforms.IsSearchable(input)
}

// Search runs a relevance search. URLs are matched with the url: operator.
// Score counts as likes and comments as shares.
func (s *Searcher) Search(
	ctx context.Context, input domain.SearchInput, analysis domain.ContentAnalysis,
) (*domain.PlatformSearchResult, error) {
	q := platforms.Query(input, analysis, 0)
	if input.Kind == domain.InputKindURL {
		q = "url:" + strings.TrimSpace(input.Content)
	}

	params := url.Values{}
	params.Set("q", q)
	params.Set("sort", "relevance")
	params.Set("limit", strconv.Itoa(PageSize))
	params.Set("raw_json", "1")

	var resp listing
	header := http.Header{"User-Agent": {s.userAgent}}
	if err := s.client.GetJSON(ctx, s.baseURL+"/search.json?"+params.Encode(), header, &resp); err != nil {
		return nil, err
	}

	hits := make([]platforms.Hit, 0, len(resp.Data.Children))
	for _, c := range resp.Data.Children {
		p := c.Data
		if p.Permalink == "" {
			continue
		}
		hits = append(hits, platforms.Hit{
			URL:       s.baseURL + p.Permalink,
			Timestamp: time.Unix(int64(p.CreatedUTC), 0).UTC(),
			Metrics: &domain.EngagementMetrics{
				Likes:  domain.Count(p.Score),
				Shares: domain.Count(p.NumComments),
			},
		})
	}
	return platforms.BuildResult(s.Platform(), hits, analysis), nil
}
