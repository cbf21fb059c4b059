package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/provena/internal/core/domain"
	"github.com/custodia-labs/provena/internal/platforms"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// SearchRate is the proactive throttle for the search API, which allows
	// 30 authenticated requests per minute.
	SearchRate = 0.5
)

// Client wraps the go-github client with throttling and error mapping.
type Client struct {
	gh       *gh.Client
	throttle *platforms.Throttle
}

// NewClient creates a client. An empty token uses unauthenticated access,
// which GitHub limits to 10 searches per minute.
func NewClient(ctx context.Context, token string) *Client {
	httpClient := &http.Client{Timeout: DefaultTimeout}
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(ctx, ts)
		httpClient.Timeout = DefaultTimeout
	}

	return &Client{
		gh:       gh.NewClient(httpClient),
		throttle: platforms.NewThrottle(platforms.ThrottleConfig{RequestsPerSecond: SearchRate, Burst: 2}),
	}
}

// SetBaseURL points the client at another API root, e.g. GitHub Enterprise.
func (c *Client) SetBaseURL(rawURL string) error {
	if !strings.HasSuffix(rawURL, "/") {
		rawURL += "/"
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse base url: %w", err)
	}
	c.gh.BaseURL = u
	return nil
}

// SearchIssues returns the first page of issues and pull requests matching
// query, oldest first.
func (c *Client) SearchIssues(ctx context.Context, query string, perPage int) ([]*gh.Issue, error) {
	if err := c.throttle.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	opts := &gh.SearchOptions{
		Sort:        "created",
		Order:       "asc",
		ListOptions: gh.ListOptions{PerPage: perPage},
	}
	result, resp, err := c.gh.Search.Issues(ctx, query, opts)
	c.updateRateLimitFromResponse(resp)
	if err != nil {
		return nil, c.wrapError(err, "search issues")
	}
	return result.Issues, nil
}

// updateRateLimitFromResponse feeds GitHub's rate limit headers to the throttle.
func (c *Client) updateRateLimitFromResponse(resp *gh.Response) {
	if resp == nil || resp.Response == nil {
		return
	}
	c.throttle.Observe(resp.Response)
}

// wrapError converts go-github errors to provider errors.
func (c *Client) wrapError(err error, operation string) error {
	var rateLimitErr *gh.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return fmt.Errorf("%w: github: rate limit exceeded, resets at %s",
			domain.ErrProvider, rateLimitErr.Rate.Reset.Format(time.RFC3339))
	}

	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return fmt.Errorf("%w: github: secondary rate limit: %s", domain.ErrProvider, abuseErr.Message)
	}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return fmt.Errorf("%w: github error (status %d): %s", domain.ErrProvider, ghErr.Response.StatusCode, ghErr.Message)
	}

	return fmt.Errorf("%w: github: %s: %w", domain.ErrProvider, operation, err)
}
