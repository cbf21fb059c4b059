// Package web is the generic platform searcher. It asks the configured
// evidence provider for pages mentioning the content.
package web

import (
	"context"
	"strings"

	"github.com/custodia-labs/provena/internal/core/domain"
	"github.com/custodia-labs/provena/internal/core/ports/driven"
	"github.com/custodia-labs/provena/internal/platforms"
)

// Ensure Searcher implements the interface.
var _ driven.PlatformSearcher = (*Searcher)(nil)

// Searcher wraps an evidence searcher. Web results carry no engagement
// counts; when the provider dates its results the earliest page is the
// original source, otherwise the top-ranked one.
type Searcher struct {
	evidence driven.EvidenceSearcher
	limit    int
}

// New creates a web searcher. limit <= 0 uses domain.DefaultEvidenceResults.
func New(evidence driven.EvidenceSearcher, limit int) *Searcher {
	if limit <= 0 {
		limit = domain.DefaultEvidenceResults
	}
	return &Searcher{evidence: evidence, limit: limit}
}

// Platform returns "web".
func (s *Searcher) Platform() string {
	return "web"
}

// CanHandle accepts text and URLs when an evidence provider is configured.
func (s *Searcher) CanHandle(_ context.Context, input domain.SearchInput) bool {
	return s.evidence != nil && platforms.IsSearchable(input)
}

// Search queries the evidence provider.
func (s *Searcher) Search(
	ctx context.Context, input domain.SearchInput, analysis domain.ContentAnalysis,
) (*domain.PlatformSearchResult, error) {
	q := platforms.Query(input, analysis, 0)
	if input.Kind == domain.InputKindURL {
		q = strings.TrimSpace(input.Content)
	}

	var hits []platforms.Hit
	if dated, ok := s.evidence.(driven.DatedEvidence); ok {
		items, err := dated.SearchDated(ctx, q, s.limit)
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			hits = append(hits, platforms.Hit{URL: it.URL, Timestamp: it.PublishedAt})
		}
	} else {
		items, err := s.evidence.Search(ctx, q, s.limit)
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			hits = append(hits, platforms.Hit{URL: it.URL})
		}
	}

	return platforms.BuildResult(s.Platform(), hits, analysis), nil
}
