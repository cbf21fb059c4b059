package domain

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// MinContentLength is the minimum number of characters of plain text an
// article or rendered page must yield to be considered real content.
const MinContentLength = 1000

// ContentPlatform classifies where extracted content came from.
type ContentPlatform string

// Known content platforms.
const (
	PlatformVideo   ContentPlatform = "video"
	PlatformArticle ContentPlatform = "article"
	PlatformOther   ContentPlatform = "other"
)

// IsValid returns true if the platform is recognised.
func (p ContentPlatform) IsValid() bool {
	switch p {
	case PlatformVideo, PlatformArticle, PlatformOther:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (p ContentPlatform) String() string {
	return string(p)
}

// NormalizedContent is the uniform output of every extraction strategy.
type NormalizedContent struct {
	// Platform is the kind of source the content came from.
	Platform ContentPlatform `json:"platform"`

	// URL is the address the content was extracted from.
	URL string `json:"url"`

	// Author is the byline, uploader or site name. May be empty.
	Author string `json:"author,omitempty"`

	// Title is the headline or video title. May be empty.
	Title string `json:"title,omitempty"`

	// PublishedAt is the publication instant, nil when unknown.
	PublishedAt *time.Time `json:"published_at,omitempty"`

	// PlainText is the body text with markup removed.
	PlainText string `json:"plain_text"`

	// MediaURLs lists images or thumbnails associated with the content.
	MediaURLs []string `json:"media_urls"`
}

// ValidateContentSize returns ErrContentTooSmall when text has fewer than
// min characters. A non-positive min falls back to MinContentLength.
func ValidateContentSize(text string, minLength int) error {
	if minLength <= 0 {
		minLength = MinContentLength
	}
	if n := utf8.RuneCountInString(text); n < minLength {
		return fmt.Errorf("%w: %d characters, need %d", ErrContentTooSmall, n, minLength)
	}
	return nil
}
