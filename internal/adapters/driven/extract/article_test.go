package extract

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/provena/internal/adapters/driven/readability"
	"github.com/custodia-labs/provena/internal/core/domain"
	"github.com/custodia-labs/provena/internal/core/services"
)

// browserArticle renders a page whose article body is well over the
// minimum content length.
func browserArticle() string {
	paragraph := "<p>A web browser takes you anywhere on the internet. It retrieves information from other parts of the web and displays it on your desktop or mobile device.</p>\n"
	return `<html><head>
<title>What is a Browser?</title>
<meta name="author" content="Mozilla">
<meta property="og:image" content="https://example.com/image.jpg">
</head><body><nav><a href="/">Home</a></nav><article>
` + strings.Repeat(paragraph, 10) + `</article></body></html>`
}

type fakeRenderer struct {
	html   string
	err    error
	calls  int
	closed bool
}

func (f *fakeRenderer) Render(context.Context, string) ([]byte, error) {
	f.calls++
	return []byte(f.html), f.err
}

func (f *fakeRenderer) Close() error {
	f.closed = true
	return nil
}

func TestArticleExtractor_EndToEnd(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "provena-test", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(browserArticle()))
	}))
	defer server.Close()

	e := NewArticleExtractor(NewHTTPFetcher(FetcherConfig{UserAgent: "provena-test"}), readability.New(), 0)
	pageURL := server.URL + "/what-is-a-browser"
	require.True(t, e.IsEligible(pageURL))

	got, err := e.Extract(context.Background(), pageURL)

	require.NoError(t, err)
	assert.Equal(t, domain.PlatformArticle, got.Platform)
	assert.Equal(t, "What is a Browser?", got.Title)
	assert.Equal(t, "Mozilla", got.Author)
	assert.Equal(t, []string{"https://example.com/image.jpg"}, got.MediaURLs)
	assert.Equal(t, pageURL, got.URL)
	assert.GreaterOrEqual(t, len(got.PlainText), domain.MinContentLength)
}

func TestArticleExtractor_TooSmall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><div id="app"></div><p>Loading the application shell...</p></body></html>`))
	}))
	defer server.Close()

	e := NewArticleExtractor(NewHTTPFetcher(FetcherConfig{}), readability.New(), 0)

	_, err := e.Extract(context.Background(), server.URL)

	assert.ErrorIs(t, err, domain.ErrContentTooSmall)
}

func TestHTTPFetcher_Errors(t *testing.T) {
	tests := []struct {
		name        string
		handler     http.HandlerFunc
		errContains string
	}{
		{
			name:        "not found",
			handler:     func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNotFound) },
			errContains: "status 404",
		},
		{
			name: "binary content",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/pdf")
				_, _ = w.Write([]byte("%PDF"))
			},
			errContains: "unsupported content type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			_, err := NewHTTPFetcher(FetcherConfig{}).Fetch(context.Background(), server.URL)

			assert.ErrorIs(t, err, domain.ErrExtractionFailed)
			assert.ErrorContains(t, err, tt.errContains)
		})
	}
}

func TestHTTPFetcher_LimitsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 100)))
	}))
	defer server.Close()

	body, err := NewHTTPFetcher(FetcherConfig{MaxBytes: 10}).Fetch(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Len(t, body, 10)
}

func TestBrowserExtractor(t *testing.T) {
	t.Run("renders and parses", func(t *testing.T) {
		renderer := &fakeRenderer{html: browserArticle()}
		e := NewBrowserExtractor(renderer, readability.New(), 0)

		got, err := e.Extract(context.Background(), "https://app.example.com/what-is-a-browser")

		require.NoError(t, err)
		assert.Equal(t, "What is a Browser?", got.Title)
		assert.Equal(t, domain.PlatformArticle, got.Platform)
	})

	t.Run("render failure", func(t *testing.T) {
		e := NewBrowserExtractor(&fakeRenderer{err: domain.ErrExtractionFailed}, readability.New(), 0)
		_, err := e.Extract(context.Background(), "https://app.example.com")
		assert.ErrorIs(t, err, domain.ErrExtractionFailed)
	})

	t.Run("respects min length", func(t *testing.T) {
		e := NewBrowserExtractor(&fakeRenderer{html: "<p>tiny</p>"}, readability.New(), 3)
		got, err := e.Extract(context.Background(), "https://app.example.com")
		require.NoError(t, err)
		assert.Equal(t, "tiny", got.PlainText)
	})

	t.Run("eligibility", func(t *testing.T) {
		assert.False(t, NewBrowserExtractor(nil, readability.New(), 0).IsEligible("https://example.com"))
		assert.False(t, NewBrowserExtractor(&fakeRenderer{}, readability.New(), 0).IsEligible("mailto:a@b.c"))
	})
}

func TestRouter_WithStrategies(t *testing.T) {
	var articleHits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		articleHits.Add(1)
		if r.URL.Path == "/spa" {
			_, _ = w.Write([]byte(`<html><body><div id="root"></div></body></html>`))
			return
		}
		_, _ = w.Write([]byte(browserArticle()))
	}))
	defer server.Close()

	parser := readability.New()
	tool := &fakeVideoTool{err: errors.New("yt-dlp exploded")}
	renderer := &fakeRenderer{html: browserArticle()}
	router := services.NewExtractionRouter(
		NewVideoExtractor(tool),
		NewArticleExtractor(NewHTTPFetcher(FetcherConfig{}), parser, 0),
		NewBrowserExtractor(renderer, parser, 0),
	)

	t.Run("video urls never reach page strategies", func(t *testing.T) {
		_, err := router.Extract(context.Background(), "https://www.youtube.com/watch?v=abc")

		assert.ErrorIs(t, err, domain.ErrUnsupportedInput)
		assert.Equal(t, 1, tool.calls)
		assert.Zero(t, articleHits.Load())
		assert.Zero(t, renderer.calls)
	})

	t.Run("script-built page falls back to the browser", func(t *testing.T) {
		got, err := router.Extract(context.Background(), server.URL+"/spa")

		require.NoError(t, err)
		assert.Equal(t, "Mozilla", got.Author)
		assert.Equal(t, 1, renderer.calls)
	})
}
