package services

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/custodia-labs/provena/internal/core/domain"
	"github.com/custodia-labs/provena/internal/core/ports/driven"
)

// Default prompts used when no PromptStore is configured or a prompt is missing.
const (
	defaultThoughtExtractionPrompt = `You analyse online content to trace where its claims came from.
Split the content into its distinct factual claims.
List the single most important claim first, then the supporting claims.
Answer with a numbered list, one claim per line, and nothing else.`

	defaultThoughtRankingPrompt = `You score claims by how central they are to the content they came from.
You will receive a numbered list of claims.
Answer with a JSON array of numbers between 0 and 100, one per claim, in the same order.
Answer with the array only.`

	defaultClassificationPrompt = `You judge the provenance of a claim from web evidence.
Given the claim and the evidence, decide where the claim most likely originated
and whether it has spread virally.
Answer with a JSON object: {"origin": "<source name or URL>", "viral": true|false}`
)

var defaultPrompts = map[string]string{
	driven.PromptThoughtExtraction: defaultThoughtExtractionPrompt,
	driven.PromptThoughtRanking:    defaultThoughtRankingPrompt,
	driven.PromptClassification:    defaultClassificationPrompt,
}

// DefaultPrompts returns the built-in prompt templates keyed by prompt name.
func DefaultPrompts() map[string]string {
	out := make(map[string]string, len(defaultPrompts))
	for k, v := range defaultPrompts {
		out[k] = v
	}
	return out
}

var (
	listItemPattern = regexp.MustCompile(`^\s*(?:\(?\d{1,3}[.):]|[-*•])\s+(.+)$`)
	labelPattern    = regexp.MustCompile(`(?i)^(?:primary|main|supporting|secondary)?\s*(?:claim|thought)\s*(?:\d+)?\s*:\s*`)
	numberPattern   = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
)

// parseThoughtList turns numbered or bulleted free text into claim strings.
// Lines that do not start a list item continue the previous item. When the
// output contains no list markers at all, each non-empty line is a claim.
func parseThoughtList(text string) ([]string, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	var items []string
	sawMarker := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "```") {
			continue
		}
		if m := listItemPattern.FindStringSubmatch(trimmed); m != nil {
			sawMarker = true
			items = append(items, cleanClaim(m[1]))
			continue
		}
		if sawMarker && len(items) > 0 {
			items[len(items)-1] = strings.TrimSpace(items[len(items)-1] + " " + cleanClaim(trimmed))
		}
	}

	if !sawMarker {
		for _, line := range lines {
			if c := cleanClaim(line); c != "" && !strings.HasPrefix(c, "```") {
				items = append(items, c)
			}
		}
	}

	out := items[:0]
	for _, it := range items {
		if it != "" {
			out = append(out, it)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no claims in completion", domain.ErrMalformedProviderResponse)
	}
	return out, nil
}

func cleanClaim(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "*_")
	s = labelPattern.ReplaceAllString(s, "")
	s = strings.Trim(s, `"`)
	return strings.TrimSpace(s)
}

// parseScores reads exactly n scores from a ranking completion.
// A JSON array is preferred; bare numbers separated by anything are accepted.
func parseScores(text string, n int) ([]float64, error) {
	body := stripCodeFence(text)

	if start, end := strings.Index(body, "["), strings.LastIndex(body, "]"); start >= 0 && end > start {
		var scores []float64
		if err := json.Unmarshal([]byte(body[start:end+1]), &scores); err == nil {
			return checkScoreCount(scores, n)
		}
	}

	matches := numberPattern.FindAllString(body, -1)
	scores := make([]float64, 0, len(matches))
	for _, m := range matches {
		v, err := strconv.ParseFloat(m, 64)
		if err != nil {
			continue
		}
		scores = append(scores, v)
	}
	return checkScoreCount(scores, n)
}

func checkScoreCount(scores []float64, n int) ([]float64, error) {
	if len(scores) != n {
		return nil, fmt.Errorf("%w: expected %d scores, got %d",
			domain.ErrMalformedProviderResponse, n, len(scores))
	}
	return scores, nil
}

// parseClassification reads the {origin, viral} verdict.
// viral may be a JSON bool or a "true"/"false" string.
func parseClassification(text string) (domain.Classification, error) {
	body := stripCodeFence(text)
	start, end := strings.Index(body, "{"), strings.LastIndex(body, "}")
	if start < 0 || end <= start {
		return domain.Classification{}, fmt.Errorf("%w: no JSON object in classification",
			domain.ErrMalformedProviderResponse)
	}

	var raw struct {
		Origin string          `json:"origin"`
		Viral  json.RawMessage `json:"viral"`
	}
	if err := json.Unmarshal([]byte(body[start:end+1]), &raw); err != nil {
		return domain.Classification{}, fmt.Errorf("%w: %v", domain.ErrMalformedProviderResponse, err)
	}

	c := domain.Classification{Origin: strings.TrimSpace(raw.Origin)}
	if c.Origin == "" {
		c.Origin = "unknown"
	}
	if len(raw.Viral) > 0 {
		var b bool
		if err := json.Unmarshal(raw.Viral, &b); err == nil {
			c.Viral = b
		} else {
			var s string
			if err := json.Unmarshal(raw.Viral, &s); err != nil {
				return domain.Classification{}, fmt.Errorf("%w: viral is %s",
					domain.ErrMalformedProviderResponse, string(raw.Viral))
			}
			c.Viral, _ = strconv.ParseBool(strings.TrimSpace(s))
		}
	}
	return c, nil
}

func stripCodeFence(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}

// numberedList renders claims for the ranking prompt.
func numberedList(thoughts []domain.Thought) string {
	var b strings.Builder
	for i, t := range thoughts {
		fmt.Fprintf(&b, "%d. %s\n", i+1, t.Content)
	}
	return b.String()
}

// evidencePrompt renders the primary claim and its evidence for classification.
func evidencePrompt(claim string, evidence []domain.EvidenceItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Claim: %s\n\nEvidence:\n", claim)
	if len(evidence) == 0 {
		b.WriteString("(no evidence found)\n")
	}
	for i, e := range evidence {
		fmt.Fprintf(&b, "%d. %s (%s)\n   %s\n", i+1, e.Title, e.URL, e.Snippet)
	}
	return b.String()
}

// primaryIndex returns the index of the highest score; ties keep the earliest.
func primaryIndex(thoughts []domain.Thought) int {
	best := 0
	for i := 1; i < len(thoughts); i++ {
		if thoughts[i].Score > thoughts[best].Score {
			best = i
		}
	}
	return best
}
