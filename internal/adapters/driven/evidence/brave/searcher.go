// Package brave provides an evidence searcher backed by the Brave Search API.
package brave

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/custodia-labs/provena/internal/core/domain"
	"github.com/custodia-labs/provena/internal/core/ports/driven"
)

// Ensure Searcher implements the interfaces.
var (
	_ driven.EvidenceSearcher = (*Searcher)(nil)
	_ driven.DatedEvidence    = (*Searcher)(nil)
)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.search.brave.com/res/v1"
	DefaultTimeout = 15 * time.Second

	// MaxCount is the largest page size the API accepts.
	MaxCount = 20

	tokenHeader = "X-Subscription-Token"
)

// Config holds configuration for the Brave searcher.
type Config struct {
	// APIKey is the subscription token (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.search.brave.com/res/v1).
	BaseURL string

	// Timeout is the request timeout (default: 15s).
	Timeout time.Duration
}

// Searcher queries Brave web search.
type Searcher struct {
	client  *http.Client
	baseURL string
	apiKey  string
	policy  *bluemonday.Policy
}

type webSearchResponse struct {
	Web struct {
		Results []webResult `json:"results"`
	} `json:"web"`
}

type webResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	PageAge     string `json:"page_age"`
	Age         string `json:"age"`
}

// New creates a Brave searcher.
func New(cfg Config) (*Searcher, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("brave: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Searcher{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		policy:  bluemonday.StrictPolicy(),
	}, nil
}

// Name returns the provider name.
func (s *Searcher) Name() string {
	return "brave"
}

// Search returns evidence items in provider rank order.
func (s *Searcher) Search(ctx context.Context, query string, limit int) ([]domain.EvidenceItem, error) {
	results, err := s.search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	items := make([]domain.EvidenceItem, 0, len(results))
	for _, r := range results {
		items = append(items, s.item(r))
	}
	return items, nil
}

// SearchDated is Search with each result's page age attached.
func (s *Searcher) SearchDated(ctx context.Context, query string, limit int) ([]driven.DatedItem, error) {
	results, err := s.search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	items := make([]driven.DatedItem, 0, len(results))
	for _, r := range results {
		items = append(items, driven.DatedItem{
			EvidenceItem: s.item(r),
			PublishedAt:  parsePageAge(r.PageAge),
		})
	}
	return items, nil
}

func (s *Searcher) search(ctx context.Context, query string, limit int) ([]webResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("brave: %w: empty query", domain.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = domain.DefaultEvidenceResults
	}
	if limit > MaxCount {
		limit = MaxCount
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/web/search?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(tokenHeader, s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("brave: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if err != nil {
			return nil, fmt.Errorf("brave error (status %d): failed to read response", resp.StatusCode)
		}
		return nil, fmt.Errorf("brave error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed webSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("brave: decode response: %w: %w", domain.ErrMalformedProviderResponse, err)
	}

	results := parsed.Web.Results
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// item strips the highlight markup Brave puts in titles and descriptions.
func (s *Searcher) item(r webResult) domain.EvidenceItem {
	return domain.EvidenceItem{
		URL:     r.URL,
		Title:   s.clean(r.Title),
		Snippet: s.clean(r.Description),
	}
}

func (s *Searcher) clean(text string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(text)))
}

// parsePageAge accepts the timestamp layouts Brave has been seen to return.
func parsePageAge(v string) time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
