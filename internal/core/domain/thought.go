package domain

import "time"

// Thought is a discrete claim extracted from content.
type Thought struct {
	// ID uniquely identifies the thought.
	ID string `json:"id"`

	// Content is the claim text.
	Content string `json:"content"`

	// Embedding is the vector representation of Content.
	Embedding []float32 `json:"embedding,omitempty"`

	// Score is the salience assigned during ranking.
	Score float64 `json:"score"`
}

// EvidenceItem is a single web result corroborating a claim.
type EvidenceItem struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// Classification is the origin and virality verdict for a claim.
type Classification struct {
	Origin string `json:"origin"`
	Viral  bool   `json:"viral"`
}

// PrimaryThought is the highest-scored thought enriched with evidence
// and a classification.
type PrimaryThought struct {
	Thought
	Origin   string         `json:"origin"`
	Viral    bool           `json:"viral"`
	Evidence []EvidenceItem `json:"evidence"`
}

// SimilarThought is a persisted primary thought ranked against a query text.
type SimilarThought struct {
	PrimaryThought
	Similarity float64 `json:"similarity"`
}

// TraceResult is the outcome of one trace pipeline run.
type TraceResult struct {
	PrimaryThought PrimaryThought `json:"primary_thought"`
	SecondaryCount int            `json:"secondary_count"`
}

// TraceMode discriminates the two search entry points.
type TraceMode string

// Available trace modes.
const (
	// TraceModePipeline runs the full staged thought pipeline for a user.
	TraceModePipeline TraceMode = "pipeline"

	// TraceModeLegacy runs a single-shot evidence search over free text.
	TraceModeLegacy TraceMode = "legacy"
)

// TraceRequest is the tagged input to the combined search entry point.
// Mode selects which of the remaining fields are read.
type TraceRequest struct {
	Mode TraceMode

	// Pipeline fields.
	UserID  string
	Content *NormalizedContent

	// Legacy field.
	Legacy LegacyQuery
}

// TraceResponse carries the output of whichever mode ran.
type TraceResponse struct {
	Mode   TraceMode      `json:"mode"`
	Trace  *TraceResult   `json:"trace,omitempty"`
	Legacy []LegacyResult `json:"legacy,omitempty"`
}

// Legacy search bounds.
const (
	DefaultLegacyMaxResults = 4
	MaxLegacyMaxResults     = 10
)

// LegacyQuery is a free-text single-shot search.
type LegacyQuery struct {
	Text       string
	MaxResults int
}

// LegacyResult is one hit of the single-shot search.
type LegacyResult struct {
	Title         string     `json:"title"`
	URL           string     `json:"url"`
	Platform      string     `json:"platform"`
	Timestamp     *time.Time `json:"timestamp,omitempty"`
	ViralityScore float64    `json:"virality_score"`
	Snippet       string     `json:"snippet"`
}
