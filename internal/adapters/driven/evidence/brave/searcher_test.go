package brave

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/provena/internal/core/domain"
)

const sampleResponse = `{
  "type": "search",
  "web": {
    "results": [
      {
        "title": "Study finds <strong>coffee</strong> linked to longer life",
        "url": "https://example.org/coffee-study",
        "description": "Researchers at <strong>Example</strong> University &amp; partners report...",
        "page_age": "2023-05-01T10:00:00"
      },
      {
        "title": "Coffee claims fact-checked",
        "url": "https://factcheck.example.com/coffee",
        "description": "We looked at the viral post.",
        "page_age": "2023-06-12"
      },
      {
        "title": "Third",
        "url": "https://third.example.com",
        "description": ""
      }
    ]
  }
}`

func newTestSearcher(t *testing.T, handler http.HandlerFunc) *Searcher {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	s, err := New(Config{APIKey: "brave-token", BaseURL: server.URL})
	require.NoError(t, err)
	return s
}

func TestNew(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorContains(t, err, "API key is required")

	s, err := New(Config{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, s.baseURL)
	assert.Equal(t, "brave", s.Name())
}

func TestSearcher_Search(t *testing.T) {
	s := newTestSearcher(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/web/search", r.URL.Path)
		assert.Equal(t, "coffee longer life", r.URL.Query().Get("q"))
		assert.Equal(t, "2", r.URL.Query().Get("count"))
		assert.Equal(t, "brave-token", r.Header.Get(tokenHeader))
		_, _ = w.Write([]byte(sampleResponse))
	})

	items, err := s.Search(context.Background(), "  coffee longer life ", 2)

	require.NoError(t, err)
	require.Len(t, items, 2, "results are capped at the limit")
	assert.Equal(t, domain.EvidenceItem{
		URL:     "https://example.org/coffee-study",
		Title:   "Study finds coffee linked to longer life",
		Snippet: "Researchers at Example University & partners report...",
	}, items[0])
	assert.Equal(t, "https://factcheck.example.com/coffee", items[1].URL)
}

func TestSearcher_Search_ClampsCount(t *testing.T) {
	var counts []string
	s := newTestSearcher(t, func(w http.ResponseWriter, r *http.Request) {
		counts = append(counts, r.URL.Query().Get("count"))
		_, _ = w.Write([]byte(`{"web":{"results":[]}}`))
	})

	_, err := s.Search(context.Background(), "q", 500)
	require.NoError(t, err)
	_, err = s.Search(context.Background(), "q", 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"20", "10"}, counts)
}

func TestSearcher_SearchDated(t *testing.T) {
	s := newTestSearcher(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(sampleResponse))
	})

	items, err := s.SearchDated(context.Background(), "coffee", 10)

	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, time.Date(2023, 5, 1, 10, 0, 0, 0, time.UTC), items[0].PublishedAt)
	assert.Equal(t, time.Date(2023, 6, 12, 0, 0, 0, 0, time.UTC), items[1].PublishedAt)
	assert.True(t, items[2].PublishedAt.IsZero())
	assert.Equal(t, "Third", items[2].Title)
}

func TestSearcher_Errors(t *testing.T) {
	t.Run("empty query", func(t *testing.T) {
		s := newTestSearcher(t, func(http.ResponseWriter, *http.Request) {
			t.Error("no request expected")
		})
		_, err := s.Search(context.Background(), "   ", 5)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("status", func(t *testing.T) {
		s := newTestSearcher(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"error":"SUBSCRIPTION_TOKEN_INVALID"}`))
		})
		_, err := s.Search(context.Background(), "q", 5)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 422")
		assert.Contains(t, err.Error(), "SUBSCRIPTION_TOKEN_INVALID")
	})

	t.Run("malformed", func(t *testing.T) {
		s := newTestSearcher(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		})
		_, err := s.Search(context.Background(), "q", 5)
		assert.ErrorIs(t, err, domain.ErrMalformedProviderResponse)
	})
}

func TestParsePageAge(t *testing.T) {
	assert.Equal(t, time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC), parsePageAge("2024-02-03T04:05:06Z"))
	assert.True(t, parsePageAge("3 days ago").IsZero())
	assert.True(t, parsePageAge("").IsZero())
}
