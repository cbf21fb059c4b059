// Package youtube searches YouTube through the Data API v3.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"github.com/custodia-labs/provena/internal/core/domain"
	"github.com/custodia-labs/provena/internal/core/ports/driven"
	"github.com/custodia-labs/provena/internal/platforms"
)

// Ensure Searcher implements the interface.
var _ driven.PlatformSearcher = (*Searcher)(nil)

// PageSize is the number of videos requested per search.
const PageSize = 25

// Config holds configuration for the YouTube searcher.
type Config struct {
	// APIKey is a Data API key. Without one the searcher handles nothing.
	APIKey string

	// Endpoint overrides the API root, e.g. for tests.
	Endpoint string
}

// Searcher finds videos matching the content and reads their statistics.
type Searcher struct {
	cfg      Config
	throttle *platforms.Throttle

	once    sync.Once
	svc     *yt.Service
	initErr error
}

// New creates a YouTube searcher. The API client is built on first search.
func New(cfg Config) *Searcher {
	return &Searcher{
		cfg:      cfg,
		throttle: platforms.NewThrottle(platforms.ThrottleConfig{RequestsPerSecond: 5, Burst: 5}),
	}
}

// Platform returns "youtube".
func (s *Searcher) Platform() string {
	return "youtube"
}

// CanHandle accepts text and URLs when an API key is configured.
func (s *Searcher) CanHandle(_ context.Context, input domain.SearchInput) bool {
	return s.cfg.APIKey != "" && platforms.IsSearchable(input)
}

// Search looks the content up. A YouTube video URL is resolved directly;
// anything else runs a relevance search first. Comment counts stand in
// for shares.
func (s *Searcher) Search(
	ctx context.Context, input domain.SearchInput, analysis domain.ContentAnalysis,
) (*domain.PlatformSearchResult, error) {
	svc, err := s.service(ctx)
	if err != nil {
		return nil, err
	}

	ids := []string{}
	if id := VideoID(input.Content); input.Kind == domain.InputKindURL && id != "" {
		ids = append(ids, id)
	} else {
		if err := s.throttle.Wait(ctx); err != nil {
			return nil, err
		}
		found, err := svc.Search.List([]string{"id"}).
			Q(platforms.Query(input, analysis, 0)).
			Type("video").
			Order("relevance").
			MaxResults(PageSize).
			Context(ctx).
			Do()
		if err != nil {
			return nil, wrapError(err, "search")
		}
		for _, item := range found.Items {
			if item.Id != nil && item.Id.VideoId != "" {
				ids = append(ids, item.Id.VideoId)
			}
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	if err := s.throttle.Wait(ctx); err != nil {
		return nil, err
	}
	videos, err := svc.Videos.List([]string{"snippet", "statistics"}).
		Id(ids...).
		Context(ctx).
		Do()
	if err != nil {
		return nil, wrapError(err, "videos")
	}

	hits := make([]platforms.Hit, 0, len(videos.Items))
	for _, v := range videos.Items {
		hit := platforms.Hit{URL: "https://www.youtube.com/watch?v=" + v.Id}
		if v.Snippet != nil {
			if t, err := time.Parse(time.RFC3339, v.Snippet.PublishedAt); err == nil {
				hit.Timestamp = t.UTC()
			}
		}
		if st := v.Statistics; st != nil {
			hit.Metrics = &domain.EngagementMetrics{
				Views:  domain.Count(int64(st.ViewCount)),
				Likes:  domain.Count(int64(st.LikeCount)),
				Shares: domain.Count(int64(st.CommentCount)),
			}
		}
		hits = append(hits, hit)
	}
	return platforms.BuildResult(s.Platform(), hits, analysis), nil
}

func (s *Searcher) service(ctx context.Context) (*yt.Service, error) {
	s.once.Do(func() {
		opts := []option.ClientOption{option.WithAPIKey(s.cfg.APIKey)}
		if s.cfg.Endpoint != "" {
			opts = append(opts, option.WithEndpoint(s.cfg.Endpoint))
		}
		s.svc, s.initErr = yt.NewService(context.WithoutCancel(ctx), opts...)
	})
	if s.initErr != nil {
		return nil, fmt.Errorf("%w: youtube: create client: %w", domain.ErrProvider, s.initErr)
	}
	return s.svc, nil
}

// VideoID extracts the video id from a YouTube watch, shorts or youtu.be URL.
func VideoID(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	switch platforms.Host(rawURL) {
	case "youtu.be":
		return strings.Trim(u.Path, "/")
	case "youtube.com", "m.youtube.com":
		if v := u.Query().Get("v"); v != "" {
			return v
		}
		for _, prefix := range []string{"/shorts/", "/live/", "/embed/"} {
			if rest, ok := strings.CutPrefix(u.Path, prefix); ok {
				return strings.Split(rest, "/")[0]
			}
		}
	}
	return ""
}

func wrapError(err error, op string) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: youtube error (status %d): %s", domain.ErrProvider, apiErr.Code, apiErr.Message)
	}
	return fmt.Errorf("%w: youtube: %s: %w", domain.ErrProvider, op, err)
}
