package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/provena/internal/core/domain"
)

func articleContent() *domain.NormalizedContent {
	return &domain.NormalizedContent{Platform: domain.PlatformArticle, PlainText: "article body"}
}

func TestExtractionRouter_FirstSuccessWins(t *testing.T) {
	video := &mockExtractor{name: "video"}
	article := &mockExtractor{name: "article", eligible: true, content: articleContent()}
	browser := &mockExtractor{name: "browser", eligible: true, content: &domain.NormalizedContent{}}
	router := NewExtractionRouter(video, article, browser)

	got, err := router.Extract(context.Background(), "https://example.com/post")

	require.NoError(t, err)
	assert.Equal(t, "article body", got.PlainText)
	assert.Zero(t, video.calls, "ineligible strategy is not called")
	assert.Zero(t, browser.calls)
}

func TestExtractionRouter_TooSmallFallsThrough(t *testing.T) {
	article := &mockExtractor{name: "article", eligible: true, err: domain.ErrContentTooSmall}
	browser := &mockExtractor{name: "browser", eligible: true, content: articleContent()}
	router := NewExtractionRouter(article, browser)

	got, err := router.Extract(context.Background(), "https://example.com/spa")

	require.NoError(t, err)
	assert.Equal(t, "article body", got.PlainText)
	assert.Equal(t, 1, article.calls)
	assert.Equal(t, 1, browser.calls)
}

func TestExtractionRouter_OtherErrorFallsThrough(t *testing.T) {
	article := &mockExtractor{name: "article", eligible: true, err: assertErr}
	browser := &mockExtractor{name: "browser", eligible: true, content: articleContent()}
	router := NewExtractionRouter(article, browser)

	_, err := router.Extract(context.Background(), "https://example.com/flaky")

	assert.NoError(t, err)
}

func TestExtractionRouter_VideoIsExclusive(t *testing.T) {
	video := &mockExtractor{name: "video", eligible: true, exclusive: true, err: assertErr}
	article := &mockExtractor{name: "article", eligible: true, content: articleContent()}
	router := NewExtractionRouter(video, article)

	_, err := router.Extract(context.Background(), "https://youtube.com/watch?v=x")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnsupportedInput)
	assert.ErrorIs(t, err, assertErr)
	assert.Contains(t, err.Error(), "video")
	assert.Zero(t, article.calls)
}

func TestExtractionRouter_Exhausted(t *testing.T) {
	t.Run("all too small", func(t *testing.T) {
		router := NewExtractionRouter(
			&mockExtractor{name: "article", eligible: true, err: domain.ErrContentTooSmall},
			&mockExtractor{name: "browser", eligible: true, err: domain.ErrContentTooSmall},
		)

		_, err := router.Extract(context.Background(), "https://example.com/tiny")

		assert.ErrorIs(t, err, domain.ErrUnsupportedInput)
		assert.NotErrorIs(t, err, domain.ErrContentTooSmall)
		assert.Contains(t, err.Error(), "2 strategies")
	})

	t.Run("keeps most specific error", func(t *testing.T) {
		router := NewExtractionRouter(
			&mockExtractor{name: "article", eligible: true, err: domain.ErrContentTooSmall},
			&mockExtractor{name: "browser", eligible: true, err: assertErr},
		)

		_, err := router.Extract(context.Background(), "https://example.com/broken")

		assert.ErrorIs(t, err, domain.ErrUnsupportedInput)
		assert.ErrorIs(t, err, assertErr)
	})

	t.Run("nothing eligible", func(t *testing.T) {
		router := NewExtractionRouter(&mockExtractor{name: "video"})

		_, err := router.Extract(context.Background(), "ftp://example.com")

		assert.ErrorIs(t, err, domain.ErrUnsupportedInput)
		assert.Contains(t, err.Error(), "no strategy accepts")
	})

	t.Run("empty url", func(t *testing.T) {
		router := NewExtractionRouter()

		_, err := router.Extract(context.Background(), "  ")

		assert.ErrorIs(t, err, domain.ErrUnsupportedInput)
	})
}

func TestExtractionRouter_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	article := &mockExtractor{name: "article", eligible: true, content: articleContent()}

	_, err := NewExtractionRouter(article).Extract(ctx, "https://example.com")

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, article.calls)
}

func TestExtractionRouter_Strategies(t *testing.T) {
	router := NewExtractionRouter(&mockExtractor{name: "video"}, &mockExtractor{name: "article"})
	assert.Equal(t, []string{"video", "article"}, router.Strategies())
}
