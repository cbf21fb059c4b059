package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/provena/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Content string `json:"content" jsonschema:"a URL, a piece of text, or a media URL to trace"`
	Kind    string `json:"kind,omitempty" jsonschema:"input kind: url, text or media (default: url when content parses as one)"`
	UserID  string `json:"user_id,omitempty" jsonschema:"user for rate limiting and history"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	OriginalSource    *SourceOutput  `json:"original_source,omitempty"`
	ViralMoments      []MomentOutput `json:"viral_moments"`
	ConfidenceScore   float64        `json:"confidence_score"`
	Platforms         []string       `json:"platforms"`
	SuggestedSearches []string       `json:"suggested_searches,omitempty"`
}

// SourceOutput is the earliest appearance found.
type SourceOutput struct {
	URL        string  `json:"url"`
	Platform   string  `json:"platform"`
	Timestamp  string  `json:"timestamp,omitempty"`
	Confidence float64 `json:"confidence"`
}

// MomentOutput is one reappearance of the content.
type MomentOutput struct {
	URL       string `json:"url"`
	Platform  string `json:"platform"`
	Timestamp string `json:"timestamp,omitempty"`
	Views     int64  `json:"views,omitempty"`
	Shares    int64  `json:"shares,omitempty"`
	Likes     int64  `json:"likes,omitempty"`
}

// ExtractInput is the input schema for the extract tool.
type ExtractInput struct {
	URL string `json:"url" jsonschema:"the page or video URL to extract"`
}

// ExtractOutput is the output schema for the extract tool.
type ExtractOutput struct {
	Platform    string   `json:"platform"`
	URL         string   `json:"url"`
	Title       string   `json:"title,omitempty"`
	Author      string   `json:"author,omitempty"`
	PublishedAt string   `json:"published_at,omitempty"`
	Text        string   `json:"text"`
	MediaURLs   []string `json:"media_urls"`
}

// TraceInput is the input schema for the trace tool.
type TraceInput struct {
	URL    string `json:"url" jsonschema:"the URL whose main claim should be traced"`
	UserID string `json:"user_id" jsonschema:"the user the trace is charged to"`
}

// TraceOutput is the output schema for the trace tool.
type TraceOutput struct {
	PrimaryID      string           `json:"primary_id"`
	Claim          string           `json:"claim"`
	Score          float64          `json:"score"`
	Origin         string           `json:"origin"`
	Viral          bool             `json:"viral"`
	Evidence       []EvidenceOutput `json:"evidence"`
	SecondaryCount int              `json:"secondary_count"`
}

// EvidenceOutput is one web result backing a claim.
type EvidenceOutput struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Snippet string `json:"snippet,omitempty"`
}

// LegacyInput is the input schema for the legacy_search tool.
type LegacyInput struct {
	Query      string `json:"query" jsonschema:"free text to search for"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"maximum number of results (default 4, at most 10)"`
}

// LegacyOutput is the output schema for the legacy_search tool.
type LegacyOutput struct {
	Results []LegacyResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// LegacyResultOutput is one legacy search hit.
type LegacyResultOutput struct {
	Title         string  `json:"title"`
	URL           string  `json:"url"`
	Platform      string  `json:"platform"`
	Timestamp     string  `json:"timestamp,omitempty"`
	ViralityScore float64 `json:"virality_score"`
	Snippet       string  `json:"snippet,omitempty"`
}

// ThoughtsInput is the input schema for the thoughts tool.
type ThoughtsInput struct {
	PrimaryID string `json:"primary_id" jsonschema:"the primary thought id returned by trace"`
}

// ThoughtsOutput is the output schema for the thoughts tool.
type ThoughtsOutput struct {
	Primary   TraceOutput     `json:"primary"`
	Secondary []ThoughtOutput `json:"secondary"`
}

// ThoughtOutput is a secondary claim.
type ThoughtOutput struct {
	ID      string  `json:"id"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// SimilarInput is the input schema for the similar_thoughts tool.
type SimilarInput struct {
	Text  string `json:"text" jsonschema:"the claim to compare against traced claims"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of matches (default 5)"`
}

// SimilarOutput is the output schema for the similar_thoughts tool.
type SimilarOutput struct {
	Matches []SimilarMatchOutput `json:"matches"`
	Count   int                  `json:"count"`
}

// SimilarMatchOutput is one traced claim ranked by similarity.
type SimilarMatchOutput struct {
	PrimaryID  string  `json:"primary_id"`
	Claim      string  `json:"claim"`
	Origin     string  `json:"origin"`
	Viral      bool    `json:"viral"`
	Similarity float64 `json:"similarity"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Find where a URL, text or media has appeared across platforms and who had it first",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "extract",
		Description: "Extract the text, title, author and media of a web page or video",
	}, s.handleExtract)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "trace",
		Description: "Extract a page, find its primary claim, and classify where the claim originated",
	}, s.handleTrace)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "legacy_search",
		Description: "Single-shot web search over free text, scored by rank and recency",
	}, s.handleLegacy)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "thoughts",
		Description: "Load a traced primary claim and its secondary claims",
	}, s.handleThoughts)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "similar_thoughts",
		Description: "Rank previously traced claims by semantic similarity to a piece of text",
	}, s.handleSimilar)
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	in := domain.SearchInput{Kind: domain.InputKind(input.Kind), Content: input.Content}
	if input.Kind == "" {
		in.Kind = domain.InputKindURL
		if !in.IsWellFormed() {
			in.Kind = domain.InputKindText
		}
	}

	result, err := s.ports.Search.Search(ctx, in, input.UserID)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		ViralMoments:      make([]MomentOutput, len(result.ViralMoments)),
		ConfidenceScore:   result.ConfidenceScore,
		Platforms:         result.Platforms,
		SuggestedSearches: result.SuggestedSearches,
	}
	if output.Platforms == nil {
		output.Platforms = []string{}
	}
	if src := result.OriginalSource; src != nil {
		output.OriginalSource = &SourceOutput{
			URL:        src.URL,
			Platform:   src.Platform,
			Timestamp:  formatTime(src.Timestamp),
			Confidence: src.ConfidenceScore,
		}
	}
	for i, m := range result.ViralMoments {
		output.ViralMoments[i] = MomentOutput{
			URL:       m.URL,
			Platform:  m.Platform,
			Timestamp: formatTime(m.Timestamp),
			Views:     m.Metrics.ViewsOrZero(),
			Shares:    m.Metrics.SharesOrZero(),
			Likes:     m.Metrics.LikesOrZero(),
		}
	}

	return nil, output, nil
}

// handleExtract handles the extract tool invocation.
func (s *Server) handleExtract(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ExtractInput,
) (*mcp.CallToolResult, ExtractOutput, error) {
	if s.ports.Extraction == nil {
		return nil, ExtractOutput{}, errUnavailable
	}

	content, err := s.ports.Extraction.Extract(ctx, input.URL)
	if err != nil {
		return nil, ExtractOutput{}, err
	}

	output := ExtractOutput{
		Platform:  content.Platform.String(),
		URL:       content.URL,
		Title:     content.Title,
		Author:    content.Author,
		Text:      content.PlainText,
		MediaURLs: content.MediaURLs,
	}
	if output.MediaURLs == nil {
		output.MediaURLs = []string{}
	}
	if content.PublishedAt != nil {
		output.PublishedAt = formatTime(*content.PublishedAt)
	}
	return nil, output, nil
}

// handleTrace handles the trace tool invocation.
func (s *Server) handleTrace(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input TraceInput,
) (*mcp.CallToolResult, TraceOutput, error) {
	if s.ports.Extraction == nil || s.ports.Trace == nil {
		return nil, TraceOutput{}, errUnavailable
	}

	content, err := s.ports.Extraction.Extract(ctx, input.URL)
	if err != nil {
		return nil, TraceOutput{}, fmt.Errorf("extracting %s: %w", input.URL, err)
	}

	result, err := s.ports.Trace.TraceSearch(ctx, input.UserID, content)
	if err != nil {
		return nil, TraceOutput{}, err
	}

	output := primaryOutput(&result.PrimaryThought)
	output.SecondaryCount = result.SecondaryCount
	return nil, output, nil
}

// handleLegacy handles the legacy_search tool invocation.
func (s *Server) handleLegacy(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input LegacyInput,
) (*mcp.CallToolResult, LegacyOutput, error) {
	if s.ports.Trace == nil {
		return nil, LegacyOutput{}, errUnavailable
	}

	results, err := s.ports.Trace.LegacySearch(ctx, domain.LegacyQuery{
		Text:       input.Query,
		MaxResults: input.MaxResults,
	})
	if err != nil {
		return nil, LegacyOutput{}, err
	}

	output := LegacyOutput{
		Results: make([]LegacyResultOutput, len(results)),
		Count:   len(results),
	}
	for i, r := range results {
		output.Results[i] = LegacyResultOutput{
			Title:         r.Title,
			URL:           r.URL,
			Platform:      r.Platform,
			ViralityScore: r.ViralityScore,
			Snippet:       r.Snippet,
		}
		if r.Timestamp != nil {
			output.Results[i].Timestamp = formatTime(*r.Timestamp)
		}
	}
	return nil, output, nil
}

// handleThoughts handles the thoughts tool invocation.
func (s *Server) handleThoughts(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ThoughtsInput,
) (*mcp.CallToolResult, ThoughtsOutput, error) {
	if s.ports.Trace == nil {
		return nil, ThoughtsOutput{}, errUnavailable
	}

	primary, err := s.ports.Trace.GetPrimaryThought(ctx, input.PrimaryID)
	if err != nil {
		return nil, ThoughtsOutput{}, err
	}
	secondary, err := s.ports.Trace.GetSecondaryThoughts(ctx, input.PrimaryID)
	if err != nil {
		return nil, ThoughtsOutput{}, err
	}

	output := ThoughtsOutput{
		Primary:   primaryOutput(primary),
		Secondary: make([]ThoughtOutput, len(secondary)),
	}
	output.Primary.SecondaryCount = len(secondary)
	for i, t := range secondary {
		output.Secondary[i] = ThoughtOutput{ID: t.ID, Content: t.Content, Score: t.Score}
	}
	return nil, output, nil
}

// handleSimilar handles the similar_thoughts tool invocation.
func (s *Server) handleSimilar(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SimilarInput,
) (*mcp.CallToolResult, SimilarOutput, error) {
	if s.ports.Trace == nil {
		return nil, SimilarOutput{}, errUnavailable
	}

	matches, err := s.ports.Trace.GetSimilarThoughts(ctx, input.Text, input.Limit)
	if err != nil {
		return nil, SimilarOutput{}, err
	}

	output := SimilarOutput{
		Matches: make([]SimilarMatchOutput, len(matches)),
		Count:   len(matches),
	}
	for i, m := range matches {
		output.Matches[i] = SimilarMatchOutput{
			PrimaryID:  m.ID,
			Claim:      m.Content,
			Origin:     m.Origin,
			Viral:      m.Viral,
			Similarity: m.Similarity,
		}
	}
	return nil, output, nil
}

func primaryOutput(p *domain.PrimaryThought) TraceOutput {
	out := TraceOutput{
		PrimaryID: p.ID,
		Claim:     p.Content,
		Score:     p.Score,
		Origin:    p.Origin,
		Viral:     p.Viral,
		Evidence:  make([]EvidenceOutput, len(p.Evidence)),
	}
	for i, e := range p.Evidence {
		out.Evidence[i] = EvidenceOutput{URL: e.URL, Title: e.Title, Snippet: e.Snippet}
	}
	return out
}

// formatTime renders t as RFC 3339, or empty for the zero time.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
