package extract

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/custodia-labs/provena/internal/core/domain"
	"github.com/custodia-labs/provena/internal/core/ports/driven"
)

// Ensure VideoExtractor implements the interfaces.
var (
	_ driven.Extractor          = (*VideoExtractor)(nil)
	_ driven.ExclusiveExtractor = (*VideoExtractor)(nil)
)

// videoPaths maps known video hosts to the path shapes of a single video.
// Profiles, channels and about pages on the same hosts do not match.
var videoPaths = map[string][]*regexp.Regexp{
	"youtube.com": {
		regexp.MustCompile(`^/watch/?$`),
		regexp.MustCompile(`^/(shorts|live|embed)/[\w-]+/?$`),
	},
	"youtu.be":        {regexp.MustCompile(`^/[\w-]+/?$`)},
	"vimeo.com":       {regexp.MustCompile(`^/(channels/[\w-]+/)?\d+(/[\w]+)?/?$`)},
	"tiktok.com":      {regexp.MustCompile(`^/@[\w.-]+/video/\d+/?$`)},
	"instagram.com":   {regexp.MustCompile(`^/reels?/[\w-]+/?$`)},
	"x.com":           {regexp.MustCompile(`^/\w+/status/\d+/video(/\d+)?/?$`)},
	"twitter.com":     {regexp.MustCompile(`^/\w+/status/\d+/video(/\d+)?/?$`)},
	"dailymotion.com": {regexp.MustCompile(`^/video/\w+/?$`)},
	"dai.ly":          {regexp.MustCompile(`^/\w+/?$`)},
	"twitch.tv":       {regexp.MustCompile(`^/videos/\d+/?$`)},
}

// IsVideoURL reports whether rawURL points at a single video on a known host.
func IsVideoURL(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}

	host := strings.ToLower(u.Hostname())
	for _, prefix := range []string{"www.", "m.", "music."} {
		host = strings.TrimPrefix(host, prefix)
	}

	for _, re := range videoPaths[host] {
		if re.MatchString(u.Path) {
			return true
		}
	}
	return false
}

// VideoExtractor describes videos through an external metadata tool.
// Its content is short by nature, so no size check is applied.
type VideoExtractor struct {
	tool driven.VideoMetadataTool
}

// NewVideoExtractor creates a video strategy.
func NewVideoExtractor(tool driven.VideoMetadataTool) *VideoExtractor {
	return &VideoExtractor{tool: tool}
}

// Name returns the strategy name.
func (e *VideoExtractor) Name() string {
	return "video"
}

// IsEligible reports whether rawURL is a recognised video URL.
func (e *VideoExtractor) IsEligible(rawURL string) bool {
	return e.tool != nil && IsVideoURL(rawURL)
}

// Exclusive stops the router from falling back to page extraction for
// video URLs.
func (e *VideoExtractor) Exclusive() bool {
	return true
}

// Extract fetches the video's metadata.
func (e *VideoExtractor) Extract(ctx context.Context, rawURL string) (*domain.NormalizedContent, error) {
	meta, err := e.tool.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	content := &domain.NormalizedContent{
		Platform:  domain.PlatformVideo,
		URL:       rawURL,
		Author:    strings.TrimSpace(meta.Uploader),
		Title:     strings.TrimSpace(meta.Title),
		PlainText: joinNonEmpty("\n\n", meta.Title, meta.Description),
		MediaURLs: []string{},
	}
	if meta.Thumbnail != "" {
		content.MediaURLs = append(content.MediaURLs, meta.Thumbnail)
	}
	if meta.UploadDate != "" {
		published, err := ParseUploadDate(meta.UploadDate)
		if err != nil {
			return nil, err
		}
		content.PublishedAt = &published
	}
	return content, nil
}

// ParseUploadDate converts a YYYYMMDD upload date to midnight UTC.
func ParseUploadDate(v string) (time.Time, error) {
	t, err := time.Parse("20060102", strings.TrimSpace(v))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: upload date %q: %w", domain.ErrExtractionFailed, v, err)
	}
	return t.UTC(), nil
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
