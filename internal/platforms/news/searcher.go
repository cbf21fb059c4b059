// Package news searches news coverage through NewsAPI.
package news

import (
	"context"
	"fmt"
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
	DefaultBaseURL = "https://newsapi.org/v2"
	PageSize       = 25
)

// Config holds configuration for the news searcher.
type Config struct {
	// APIKey is a NewsAPI key. Without one the searcher handles nothing.
	APIKey string

	// BaseURL is the API root (default: https://newsapi.org/v2).
	BaseURL string

	// Timeout is the request timeout.
	Timeout time.Duration
}

// Searcher finds articles covering the content. News carries no engagement
// counts, so its moments only date the spread.
type Searcher struct {
	client  *platforms.Client
	baseURL string
	apiKey  string
}

type everythingResponse struct {
	Status   string `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Articles []struct {
		URL         string    `json:"url"`
		PublishedAt time.Time `json:"publishedAt"`
	} `json:"articles"`
}

// New creates a news searcher.
func New(cfg Config) *Searcher {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	throttle := platforms.NewThrottle(platforms.ThrottleConfig{RequestsPerSecond: 1, Burst: 1})
	return &Searcher{
		client:  platforms.NewClient("newsapi", throttle, cfg.Timeout),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
	}
}

// Platform returns "news".
func (s *Searcher) Platform() string {
	return "news"
}

// CanHandle accepts text and URLs when an API key is configured.
func (s *Searcher) CanHandle(_ context.Context, input domain.SearchInput) bool {
	return s.apiKey != "" && platforms.IsSearchable(input)
}

// Search queries every indexed article, newest first.
func (s *Searcher) Search(
	ctx context.Context, input domain.SearchInput, analysis domain.ContentAnalysis,
) (*domain.PlatformSearchResult, error) {
	params := url.Values{}
	params.Set("q", platforms.Query(input, analysis, 5))
	params.Set("sortBy", "publishedAt")
	params.Set("pageSize", strconv.Itoa(PageSize))

	var resp everythingResponse
	header := http.Header{"X-Api-Key": {s.apiKey}}
	if err := s.client.GetJSON(ctx, s.baseURL+"/everything?"+params.Encode(), header, &resp); err != nil {
		return nil, err
	}
	if resp.Status == "error" {
		return nil, fmt.Errorf("%w: newsapi error (%s): %s", domain.ErrProvider, resp.Code, resp.Message)
	}

	hits := make([]platforms.Hit, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		if a.URL == "" {
			continue
		}
		hits = append(hits, platforms.Hit{URL: a.URL, Timestamp: a.PublishedAt.UTC()})
	}
	return platforms.BuildResult(s.Platform(), hits, analysis), nil
}
