// Package readability implements driven.ArticleParser on golang.org/x/net/html.
// It pulls headline metadata from the document head and the main body text
// from the densest paragraph container, skipping navigation and scripts.
package readability
