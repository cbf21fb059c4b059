package readability

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/custodia-labs/provena/internal/core/ports/driven"
)

// Ensure Parser implements the interface.
var _ driven.ArticleParser = (*Parser)(nil)

// minParagraph is the shortest paragraph that counts towards a container's score.
const minParagraph = 25

// Parser extracts the readable article from an HTML page.
type Parser struct{}

// New creates a new readability parser.
func New() *Parser {
	return &Parser{}
}

// Parse parses page and returns its article. Content is empty when the page
// has no readable body; callers decide whether that is enough.
func (p *Parser) Parse(ctx context.Context, page []byte, pageURL string) (*driven.Article, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	meta := collectMeta(doc)

	article := &driven.Article{
		Title:        firstNonEmpty(meta["og:title"], meta["twitter:title"], documentTitle(doc), titleFromURL(pageURL)),
		Author:       firstNonEmpty(meta["author"], meta["article:author"], meta["byl"], meta["dc.creator"], bylineText(doc)),
		LeadImageURL: resolveURL(pageURL, firstNonEmpty(meta["og:image"], meta["og:image:url"], meta["twitter:image"])),
	}

	published := firstNonEmpty(
		meta["article:published_time"],
		meta["og:published_time"],
		meta["datepublished"],
		meta["date"],
		meta["dc.date"],
		timeDatetime(doc),
	)
	if t, ok := parseDate(published); ok {
		article.DatePublished = &t
	}

	if root := contentRoot(doc); root != nil {
		article.Content = cleanText(collectText(root))
	}

	return article, nil
}

// collectMeta maps lower-cased meta name, property and itemprop keys to
// their content. The first occurrence of a key wins.
func collectMeta(doc *html.Node) map[string]string {
	meta := make(map[string]string)
	walk(doc, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.DataAtom != atom.Meta {
			return true
		}
		content := strings.TrimSpace(attr(n, "content"))
		if content == "" {
			return true
		}
		for _, key := range []string{"property", "name", "itemprop"} {
			k := strings.ToLower(strings.TrimSpace(attr(n, key)))
			if k == "" {
				continue
			}
			if _, seen := meta[k]; !seen {
				meta[k] = content
			}
		}
		return true
	})
	return meta
}

func documentTitle(doc *html.Node) string {
	if n := find(doc, atom.Title); n != nil {
		return strings.TrimSpace(textOf(n))
	}
	if n := find(doc, atom.H1); n != nil {
		return strings.TrimSpace(textOf(n))
	}
	return ""
}

// titleFromURL turns the last path segment into a title.
func titleFromURL(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil || u.Path == "" || u.Path == "/" {
		return ""
	}
	name := path.Base(u.Path)
	if ext := path.Ext(name); ext != "" {
		name = strings.TrimSuffix(name, ext)
	}
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	return strings.TrimSpace(name)
}

// bylineText finds rel="author" links or elements classed as a byline.
func bylineText(doc *html.Node) string {
	var byline string
	walk(doc, func(n *html.Node) bool {
		if byline != "" {
			return false
		}
		if n.Type != html.ElementNode {
			return true
		}
		class := strings.ToLower(attr(n, "class"))
		if attr(n, "rel") == "author" || strings.Contains(class, "byline") || attr(n, "itemprop") == "author" {
			byline = strings.TrimSpace(textOf(n))
			byline = strings.TrimSpace(strings.TrimPrefix(byline, "By "))
			return false
		}
		return true
	})
	return byline
}

func timeDatetime(doc *html.Node) string {
	if n := find(doc, atom.Time); n != nil {
		return attr(n, "datetime")
	}
	return ""
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
	"January 2, 2006",
}

func parseDate(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func resolveURL(base, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil || b.Scheme == "" {
		return r.String()
	}
	return b.ResolveReference(r).String()
}

// skipped holds elements whose text never belongs to the article.
var skipped = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Nav:      true,
	atom.Header:   true,
	atom.Footer:   true,
	atom.Aside:    true,
	atom.Form:     true,
	atom.Svg:      true,
	atom.Iframe:   true,
	atom.Button:   true,
	atom.Head:     true,
	atom.Template: true,
}

// block elements are separated by line breaks in the collected text.
var block = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Br: true, atom.Hr: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Li: true, atom.Tr: true, atom.Blockquote: true, atom.Pre: true,
	atom.Table: true, atom.Section: true, atom.Article: true, atom.Figcaption: true,
}

var boilerplateHint = regexp.MustCompile(`(?i)\b(comment|footer|sidebar|menu|share|social|related|promo|advert|cookie|newsletter)`)

func isBoilerplate(n *html.Node) bool {
	if skipped[n.DataAtom] {
		return true
	}
	switch attr(n, "role") {
	case "navigation", "banner", "contentinfo", "complementary":
		return true
	}
	switch n.DataAtom {
	case atom.Html, atom.Body, atom.Main, atom.Article:
		return false
	}
	return boilerplateHint.MatchString(attr(n, "class") + " " + attr(n, "id"))
}

// contentRoot picks the container holding the article body: the
// paragraph-dense container when one scores, else <article>, <main>
// or <body>.
func contentRoot(doc *html.Node) *html.Node {
	scores := make(map[*html.Node]int)
	var order []*html.Node

	var visit func(n *html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode && isBoilerplate(n) {
			return
		}
		if n.Type == html.ElementNode && (n.DataAtom == atom.P || n.DataAtom == atom.Pre || n.DataAtom == atom.Blockquote) {
			length := len(strings.TrimSpace(textOf(n))) - len(linkText(n))
			if length >= minParagraph && n.Parent != nil {
				if _, ok := scores[n.Parent]; !ok {
					order = append(order, n.Parent)
				}
				scores[n.Parent] += length
				if gp := n.Parent.Parent; gp != nil {
					if _, ok := scores[gp]; !ok {
						order = append(order, gp)
					}
					scores[gp] += length / 2
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(doc)

	var best *html.Node
	bestScore := 0
	for _, n := range order {
		if scores[n] > bestScore {
			best, bestScore = n, scores[n]
		}
	}
	if best != nil {
		return best
	}

	for _, a := range []atom.Atom{atom.Article, atom.Main, atom.Body} {
		if n := find(doc, a); n != nil {
			return n
		}
	}
	return nil
}

// collectText renders the visible text of n with line breaks around blocks.
func collectText(n *html.Node) string {
	var sb strings.Builder
	var f func(*html.Node)
	f = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			sb.WriteString(n.Data)
			return
		case html.ElementNode:
			if isBoilerplate(n) {
				return
			}
			if block[n.DataAtom] {
				sb.WriteByte('\n')
				defer sb.WriteByte('\n')
			}
		case html.CommentNode:
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(n)
	return sb.String()
}

var (
	multiSpaces   = regexp.MustCompile(`[ \t\r\f\v]+`)
	multiNewlines = regexp.MustCompile(`\n{3,}`)
)

// cleanText collapses whitespace and drops empty lines.
func cleanText(content string) string {
	content = multiSpaces.ReplaceAllString(content, " ")
	content = multiNewlines.ReplaceAllString(content, "\n\n")

	lines := strings.Split(content, "\n")
	result := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			result = append(result, line)
		}
	}
	return strings.Join(result, "\n")
}

func linkText(n *html.Node) string {
	var sb strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.ElementNode && c.DataAtom == atom.A {
			sb.WriteString(strings.TrimSpace(textOf(c)))
			return false
		}
		return true
	})
	return sb.String()
}

func textOf(n *html.Node) string {
	var sb strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.ElementNode && (c.DataAtom == atom.Script || c.DataAtom == atom.Style) {
			return false
		}
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		return true
	})
	return strings.Join(strings.Fields(sb.String()), " ")
}

// walk visits n and its descendants depth first. Returning false from
// fn skips the node's children.
func walk(n *html.Node, fn func(*html.Node) bool) {
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func find(doc *html.Node, a atom.Atom) *html.Node {
	var found *html.Node
	walk(doc, func(n *html.Node) bool {
		if found != nil {
			return false
		}
		if n.Type == html.ElementNode && n.DataAtom == a {
			found = n
			return false
		}
		return true
	})
	return found
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
