// Package twitter searches recent posts on X through the v2 API.
package twitter

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
	DefaultBaseURL = "https://api.x.com/2"
	PageSize       = 25
)

// Config holds configuration for the X searcher.
type Config struct {
	// BearerToken is an app-only bearer token. Without one the searcher
	// handles nothing.
	BearerToken string

	// BaseURL is the API root (default: https://api.x.com/2).
	BaseURL string

	// Timeout is the request timeout.
	Timeout time.Duration
}

// Searcher finds recent posts matching the content.
type Searcher struct {
	client  *platforms.Client
	baseURL string
	token   string
}

type searchResponse struct {
	Data []tweet `json:"data"`
}

type tweet struct {
	ID            string    `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	PublicMetrics *struct {
		RetweetCount    int64  `json:"retweet_count"`
		QuoteCount      int64  `json:"quote_count"`
		LikeCount       int64  `json:"like_count"`
		ImpressionCount *int64 `json:"impression_count"`
	} `json:"public_metrics"`
}

// New creates an X searcher. Recent search allows 450 requests per 15
// minutes with an app token.
func New(cfg Config) *Searcher {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	throttle := platforms.NewThrottle(platforms.ThrottleConfig{RequestsPerSecond: 0.5, Burst: 2})
	return &Searcher{
		client:  platforms.NewClient("twitter", throttle, cfg.Timeout),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.BearerToken,
	}
}

// Platform returns "twitter".
func (s *Searcher) Platform() string {
	return "twitter"
}

// CanHandle accepts text and URLs when a bearer token is configured.
func (s *Searcher) CanHandle(_ context.Context, input domain.SearchInput) bool {
	return s.token != "" && platforms.IsSearchable(input)
}

// Search runs a recent search. Impressions count as views, retweets plus
// quotes as shares.
func (s *Searcher) Search(
	ctx context.Context, input domain.SearchInput, analysis domain.ContentAnalysis,
) (*domain.PlatformSearchResult, error) {
	q := platforms.Query(input, analysis, 0)
	if input.Kind == domain.InputKindURL {
		q = fmt.Sprintf("url:%q", strings.TrimSpace(input.Content))
	}

	params := url.Values{}
	params.Set("query", q+" -is:retweet")
	params.Set("max_results", strconv.Itoa(PageSize))
	params.Set("tweet.fields", "created_at,public_metrics")

	var resp searchResponse
	header := http.Header{"Authorization": {"Bearer " + s.token}}
	if err := s.client.GetJSON(ctx, s.baseURL+"/tweets/search/recent?"+params.Encode(), header, &resp); err != nil {
		return nil, err
	}

	hits := make([]platforms.Hit, 0, len(resp.Data))
	for _, tw := range resp.Data {
		hit := platforms.Hit{
			URL:       "https://x.com/i/web/status/" + tw.ID,
			Timestamp: tw.CreatedAt.UTC(),
		}
		if m := tw.PublicMetrics; m != nil {
			hit.Metrics = &domain.EngagementMetrics{
				Views:  m.ImpressionCount,
				Shares: domain.Count(m.RetweetCount + m.QuoteCount),
				Likes:  domain.Count(m.LikeCount),
			}
		}
		hits = append(hits, hit)
	}
	return platforms.BuildResult(s.Platform(), hits, analysis), nil
}
