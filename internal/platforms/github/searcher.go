// Package github searches GitHub issues and pull requests that mention the
// content, using go-github.
package github

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/provena/internal/core/domain"
	"github.com/custodia-labs/provena/internal/core/ports/driven"
	"github.com/custodia-labs/provena/internal/platforms"
)

// Ensure Searcher implements the interface.
var _ driven.PlatformSearcher = (*Searcher)(nil)

// PageSize is the number of issues requested per search.
const PageSize = 25

// Searcher finds issues and pull requests discussing the content.
type Searcher struct {
	client *Client
}

// New creates a GitHub searcher.
func New(client *Client) *Searcher {
	return &Searcher{client: client}
}

// Platform returns "github".
func (s *Searcher) Platform() string {
	return "github"
}

// CanHandle accepts text and github.com URLs.
func (s *Searcher) CanHandle(_ context.Context, input domain.SearchInput) bool {
	switch input.Kind {
	case domain.InputKindText:
		return strings.TrimSpace(input.Content) != ""
	case domain.InputKindURL:
		return input.IsWellFormed() && platforms.Host(input.Content) == "github.com"
	default:
		return false
	}
}

// Search looks for issues and pull requests mentioning the content.
// Reactions count as likes and comments as shares.
func (s *Searcher) Search(
	ctx context.Context, input domain.SearchInput, analysis domain.ContentAnalysis,
) (*domain.PlatformSearchResult, error) {
	q := platforms.Query(input, analysis, 5)
	if input.Kind == domain.InputKindURL {
		q = fmt.Sprintf("%q", strings.TrimSpace(input.Content))
	}

	issues, err := s.client.SearchIssues(ctx, q+" in:title,body", PageSize)
	if err != nil {
		return nil, err
	}

	hits := make([]platforms.Hit, 0, len(issues))
	for _, issue := range issues {
		if issue.GetHTMLURL() == "" {
			continue
		}
		hit := platforms.Hit{
			URL:       issue.GetHTMLURL(),
			Timestamp: issue.GetCreatedAt().UTC(),
			Metrics: &domain.EngagementMetrics{
				Shares: domain.Count(int64(issue.GetComments())),
			},
		}
		if r := issue.GetReactions(); r != nil {
			hit.Metrics.Likes = domain.Count(int64(r.GetTotalCount()))
		}
		hits = append(hits, hit)
	}
	return platforms.BuildResult(s.Platform(), hits, analysis), nil
}
