package platforms

import (
	"net/url"
	"strings"
	"time"

	"github.com/custodia-labs/provena/internal/core/domain"
)

// Coverage constants.
const (
	// FullCoverage is the number of hits that earns a searcher full confidence.
	FullCoverage = 10

	// MinCoverage is the coverage floor once anything was found.
	MinCoverage = 0.1

	// DefaultQueryTerms caps how many key elements go into a query.
	DefaultQueryTerms = 8

	maxQueryLength = 200
)

// Hit is one sighting of the content on a platform.
type Hit struct {
	URL       string
	Timestamp time.Time
	Metrics   *domain.EngagementMetrics
}

// BuildResult turns hits into a platform result, or nil when there are none.
//
// Every hit becomes a viral moment, in the order given. The original source
// is the earliest dated hit, or the first hit when none is dated. Confidence
// is the analysis confidence scaled by Coverage.
func BuildResult(platform string, hits []Hit, analysis domain.ContentAnalysis) *domain.PlatformSearchResult {
	if len(hits) == 0 {
		return nil
	}

	confidence := analysis.Confidence * Coverage(len(hits))
	result := &domain.PlatformSearchResult{
		Platform:        platform,
		ViralMoments:    make([]domain.ViralMoment, 0, len(hits)),
		ConfidenceScore: confidence,
	}

	earliest := -1
	for i, h := range hits {
		result.ViralMoments = append(result.ViralMoments, domain.ViralMoment{
			URL:       h.URL,
			Timestamp: h.Timestamp,
			Platform:  platform,
			Metrics:   h.Metrics,
		})
		if h.Timestamp.IsZero() {
			continue
		}
		if earliest < 0 || h.Timestamp.Before(hits[earliest].Timestamp) {
			earliest = i
		}
	}
	if earliest < 0 {
		earliest = 0
	}

	result.OriginalSource = &domain.OriginalSource{
		URL:             hits[earliest].URL,
		Timestamp:       hits[earliest].Timestamp,
		Platform:        platform,
		ConfidenceScore: confidence,
	}
	return result
}

// Coverage is min(1, n/FullCoverage), floored at MinCoverage when n > 0.
func Coverage(n int) float64 {
	if n <= 0 {
		return 0
	}
	c := float64(n) / FullCoverage
	if c > 1 {
		c = 1
	}
	if c < MinCoverage {
		c = MinCoverage
	}
	return c
}

// Query builds a keyword query from the first maxTerms key elements,
// falling back to the trimmed content.
func Query(input domain.SearchInput, analysis domain.ContentAnalysis, maxTerms int) string {
	if maxTerms <= 0 {
		maxTerms = DefaultQueryTerms
	}
	terms := analysis.KeyElements
	if len(terms) > maxTerms {
		terms = terms[:maxTerms]
	}
	q := strings.Join(terms, " ")
	if q == "" {
		q = strings.Join(strings.Fields(input.Content), " ")
	}
	if r := []rune(q); len(r) > maxQueryLength {
		q = string(r[:maxQueryLength])
	}
	return q
}

// Host returns the lower-cased host of rawURL without a leading "www.".
func Host(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// IsSearchable reports whether input is a text input or a well formed URL.
// Media inputs are left to searchers that can match images.
func IsSearchable(input domain.SearchInput) bool {
	switch input.Kind {
	case domain.InputKindText:
		return strings.TrimSpace(input.Content) != ""
	case domain.InputKindURL:
		return input.IsWellFormed()
	default:
		return false
	}
}
