package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/custodia-labs/provena/internal/core/domain"
)

var suggestedSearches = []string{
	"Try searching with more specific keywords",
	"Include the original author or source if known",
	"Search for a distinctive quote from the content",
}

// CombineResults merges per-platform results into one trace.
//
// The original source is the candidate with the highest confidence, the
// first one seen winning ties. Viral moments from every platform are sorted
// by views, then shares, then likes, all descending, with missing counts as
// zero. Confidence is the mean of the platform confidences. When nothing was
// found the result carries search suggestions instead.
func CombineResults(
	input domain.SearchInput, analysis domain.ContentAnalysis, results []domain.PlatformSearchResult, now time.Time,
) *domain.SearchResult {
	combined := &domain.SearchResult{
		Input:        input,
		ViralMoments: []domain.ViralMoment{},
		SearchedAt:   now.UTC(),
	}

	if !anyFound(results) {
		combined.SuggestedSearches = append([]string(nil), suggestedSearches...)
		combined.AlternativeQueries = alternativeQueries(input, analysis)
		return combined
	}

	var total float64
	for _, r := range results {
		combined.Platforms = append(combined.Platforms, r.Platform)
		total += r.ConfidenceScore

		if r.OriginalSource != nil {
			if combined.OriginalSource == nil || r.OriginalSource.ConfidenceScore > combined.OriginalSource.ConfidenceScore {
				src := *r.OriginalSource
				combined.OriginalSource = &src
			}
		}
		combined.ViralMoments = append(combined.ViralMoments, r.ViralMoments...)
	}
	combined.ConfidenceScore = total / float64(len(results))
	sortViralMoments(combined.ViralMoments)

	return combined
}

func anyFound(results []domain.PlatformSearchResult) bool {
	for _, r := range results {
		if r.OriginalSource != nil || len(r.ViralMoments) > 0 {
			return true
		}
	}
	return false
}

// sortViralMoments orders by views, shares, likes, all descending.
// The sort is stable so equal moments keep platform order.
func sortViralMoments(moments []domain.ViralMoment) {
	sort.SliceStable(moments, func(i, j int) bool {
		a, b := moments[i].Metrics, moments[j].Metrics
		if av, bv := a.ViewsOrZero(), b.ViewsOrZero(); av != bv {
			return av > bv
		}
		if as, bs := a.SharesOrZero(), b.SharesOrZero(); as != bs {
			return as > bs
		}
		return a.LikesOrZero() > b.LikesOrZero()
	})
}

// alternativeQueries derives retry queries from the analysis.
func alternativeQueries(input domain.SearchInput, analysis domain.ContentAnalysis) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(q string) {
		q = strings.TrimSpace(q)
		if q != "" && !seen[q] {
			seen[q] = true
			out = append(out, q)
		}
	}

	if len(analysis.KeyElements) > 0 {
		add(strings.Join(analysis.KeyElements, " "))
	}
	if input.Kind == domain.InputKindText {
		add(fmt.Sprintf("%q", truncate(input.Content, 80)))
	}
	if len(analysis.KeyElements) > 3 {
		add(strings.Join(analysis.KeyElements[:3], " "))
	}
	return out
}
