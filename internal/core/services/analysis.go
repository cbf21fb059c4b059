package services

import (
	"maps"
	"net/url"
	"slices"
	"strings"
	"unicode"

	"github.com/custodia-labs/provena/internal/core/domain"
)

// Analysis weights.
const (
	analysisBase          = 0.5
	analysisElementsBonus = 0.3
	analysisValidBonus    = 0.2
	minTextTokenLength    = 4
)

// AnalyzeContent extracts key elements and a heuristic confidence for input.
// Confidence is 0.5, plus 0.3 when any key element was found, plus 0.2 when
// the content is well formed for its declared kind.
func AnalyzeContent(input domain.SearchInput) domain.ContentAnalysis {
	var elements []string
	switch input.Kind {
	case domain.InputKindURL, domain.InputKindMedia:
		elements = urlElements(input.Content)
	default:
		elements = textElements(input.Content)
	}

	confidence := analysisBase
	if len(elements) > 0 {
		confidence += analysisElementsBonus
	}
	if input.IsWellFormed() {
		confidence += analysisValidBonus
	}

	return domain.ContentAnalysis{
		KeyElements: elements,
		Confidence:  confidence,
	}
}

// urlElements returns host labels without "www" and the TLD, then path
// segments, then query values ordered by parameter name.
func urlElements(raw string) []string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return textElements(raw)
	}

	var out []string
	seen := make(map[string]bool)
	add := func(s string) {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		out = append(out, s)
	}

	labels := strings.Split(u.Hostname(), ".")
	if len(labels) > 1 {
		labels = labels[:len(labels)-1]
	}
	for _, l := range labels {
		if l != "www" {
			add(l)
		}
	}
	for _, seg := range strings.Split(u.Path, "/") {
		if dec, err := url.PathUnescape(seg); err == nil {
			seg = dec
		}
		add(seg)
	}
	query := u.Query()
	for _, k := range slices.Sorted(maps.Keys(query)) {
		for _, v := range query[k] {
			add(v)
		}
	}
	return out
}

// textElements returns distinct lower-cased words longer than three characters,
// in order of first appearance.
func textElements(text string) []string {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})

	var out []string
	seen := make(map[string]bool)
	for _, w := range words {
		w = strings.ToLower(strings.Trim(w, "'"))
		if len([]rune(w)) < minTextTokenLength || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}
