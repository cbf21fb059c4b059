package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
	"time"
)

// InputKind is the declared type of a SearchInput.
type InputKind string

// Available input kinds.
const (
	InputKindURL   InputKind = "url"
	InputKindText  InputKind = "text"
	InputKindMedia InputKind = "media"
)

// IsValid returns true if the input kind is recognised.
func (k InputKind) IsValid() bool {
	switch k {
	case InputKindURL, InputKindText, InputKindMedia:
		return true
	default:
		return false
	}
}

// Cost returns the number of quota credits a search of this kind consumes.
// Media lookups fan out to heavier providers and cost more.
func (k InputKind) Cost() int {
	if k == InputKindMedia {
		return 3
	}
	return 1
}

// String returns the string representation.
func (k InputKind) String() string {
	return string(k)
}

// SearchInput is the unit of caching and quota accounting for platform search.
type SearchInput struct {
	Kind    InputKind `json:"kind"`
	Content string    `json:"content"`
}

// Fingerprint returns a deterministic cache key for the input.
// Inputs with identical kind and content always share a fingerprint.
func (in SearchInput) Fingerprint() string {
	h := sha256.New()
	h.Write([]byte(in.Kind))
	h.Write([]byte{0})
	h.Write([]byte(in.Content))
	return hex.EncodeToString(h.Sum(nil))
}

// Validate checks that the input can be searched at all.
func (in SearchInput) Validate() error {
	if !in.Kind.IsValid() {
		return ErrInvalidInput
	}
	if strings.TrimSpace(in.Content) == "" {
		return ErrInvalidInput
	}
	return nil
}

// IsWellFormed reports whether the content is syntactically valid for its kind:
// url and media inputs must parse as absolute http(s) URLs, text must be non-blank.
func (in SearchInput) IsWellFormed() bool {
	switch in.Kind {
	case InputKindURL, InputKindMedia:
		u, err := url.Parse(strings.TrimSpace(in.Content))
		if err != nil {
			return false
		}
		return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
	case InputKindText:
		return strings.TrimSpace(in.Content) != ""
	default:
		return false
	}
}

// ContentAnalysis is the heuristic pre-pass that precedes platform search.
type ContentAnalysis struct {
	// KeyElements are the salient tokens searchers build queries from.
	KeyElements []string `json:"key_elements"`

	// Confidence is the heuristic confidence in the analysis, in [0, 1].
	Confidence float64 `json:"confidence"`
}

// EngagementMetrics are optional engagement counts for a viral moment.
// A nil field means the platform did not report it.
type EngagementMetrics struct {
	Views  *int64 `json:"views,omitempty"`
	Shares *int64 `json:"shares,omitempty"`
	Likes  *int64 `json:"likes,omitempty"`
}

// ViewsOrZero returns views, treating an absent count as zero.
func (m *EngagementMetrics) ViewsOrZero() int64 {
	if m == nil || m.Views == nil {
		return 0
	}
	return *m.Views
}

// SharesOrZero returns shares, treating an absent count as zero.
func (m *EngagementMetrics) SharesOrZero() int64 {
	if m == nil || m.Shares == nil {
		return 0
	}
	return *m.Shares
}

// LikesOrZero returns likes, treating an absent count as zero.
func (m *EngagementMetrics) LikesOrZero() int64 {
	if m == nil || m.Likes == nil {
		return 0
	}
	return *m.Likes
}

// Count returns a pointer to n, for filling EngagementMetrics fields.
func Count(n int64) *int64 {
	return &n
}

// ViralMoment is one recorded reappearance of the content on a platform.
type ViralMoment struct {
	URL       string             `json:"url"`
	Timestamp time.Time          `json:"timestamp"`
	Platform  string             `json:"platform"`
	Metrics   *EngagementMetrics `json:"metrics,omitempty"`
}

// OriginalSource is a platform's best guess at where the content first appeared.
type OriginalSource struct {
	URL             string    `json:"url"`
	Timestamp       time.Time `json:"timestamp"`
	Platform        string    `json:"platform"`
	ConfidenceScore float64   `json:"confidence_score"`
}

// PlatformSearchResult is what one platform searcher found.
type PlatformSearchResult struct {
	Platform        string          `json:"platform"`
	OriginalSource  *OriginalSource `json:"original_source,omitempty"`
	ViralMoments    []ViralMoment   `json:"viral_moments"`
	ConfidenceScore float64         `json:"confidence_score"`
}

// SearchResult is the combined provenance trace across all platforms.
type SearchResult struct {
	Input              SearchInput     `json:"input"`
	OriginalSource     *OriginalSource `json:"original_source,omitempty"`
	ViralMoments       []ViralMoment   `json:"viral_moments"`
	ConfidenceScore    float64         `json:"confidence_score"`
	Platforms          []string        `json:"platforms,omitempty"`
	SuggestedSearches  []string        `json:"suggested_searches,omitempty"`
	AlternativeQueries []string        `json:"alternative_queries,omitempty"`
	SearchedAt         time.Time       `json:"searched_at"`
}

// IsEmpty returns true if no platform produced anything.
func (r *SearchResult) IsEmpty() bool {
	return r.OriginalSource == nil && len(r.ViralMoments) == 0 && len(r.Platforms) == 0
}
