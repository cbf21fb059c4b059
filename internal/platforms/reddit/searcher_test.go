package reddit

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

const listingJSON = `{"kind":"Listing","data":{"children":[
 {"kind":"t3","data":{"permalink":"/r/pics/comments/b/later/","created_utc":1700003600.0,"score":900,"num_comments":40}},
 {"kind":"t3","data":{"permalink":"/r/pics/comments/a/first/","created_utc":1700000000.0,"score":12,"num_comments":3}},
 {"kind":"t3","data":{"permalink":""}}
]}}`

func TestSearcher_Search(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search.json", r.URL.Path)
		assert.Equal(t, "relevance", r.URL.Query().Get("sort"))
		assert.Equal(t, "25", r.URL.Query().Get("limit"))
		assert.Equal(t, "provena-test", r.Header.Get("User-Agent"))
		gotQuery = r.URL.Query().Get("q")
		_, _ = w.Write([]byte(listingJSON))
	}))
	defer server.Close()

	s := New(Config{BaseURL: server.URL, UserAgent: "provena-test"})
	analysis := domain.ContentAnalysis{KeyElements: []string{"cat", "photo"}, Confidence: 1}

	res, err := s.Search(context.Background(), domain.SearchInput{Kind: domain.InputKindText, Content: "cat photo"}, analysis)

	require.NoError(t, err)
	assert.Equal(t, "cat photo", gotQuery)
	require.Len(t, res.ViralMoments, 2)
	assert.Equal(t, server.URL+"/r/pics/comments/b/later/", res.ViralMoments[0].URL)
	assert.Equal(t, int64(900), res.ViralMoments[0].Metrics.LikesOrZero())
	assert.Equal(t, int64(40), res.ViralMoments[0].Metrics.SharesOrZero())
	assert.Nil(t, res.ViralMoments[0].Metrics.Views)

	require.NotNil(t, res.OriginalSource)
	assert.Equal(t, server.URL+"/r/pics/comments/a/first/", res.OriginalSource.URL)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), res.OriginalSource.Timestamp)
	assert.InDelta(t, 0.2, res.ConfidenceScore, 1e-9)
}

func TestSearcher_URLQueryAndEmpty(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		_, _ = w.Write([]byte(`{"data":{"children":[]}}`))
	}))
	defer server.Close()

	s := New(Config{BaseURL: server.URL})

	res, err := s.Search(context.Background(),
		domain.SearchInput{Kind: domain.InputKindURL, Content: "https://i.imgur.com/x.jpg"}, domain.ContentAnalysis{})

	require.NoError(t, err)
	assert.Nil(t, res, "no posts means no result")
	assert.Equal(t, "url:https://i.imgur.com/x.jpg", gotQuery)
}

func TestSearcher_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := New(Config{BaseURL: server.URL}).Search(context.Background(),
		domain.SearchInput{Kind: domain.InputKindText, Content: "x"}, domain.ContentAnalysis{})

	assert.ErrorIs(t, err, domain.ErrProvider)
}

func TestSearcher_CanHandle(t *testing.T) {
	s := New(Config{})
	ctx := context.Background()

	assert.Equal(t, "reddit", s.Platform())
	assert.True(t, s.CanHandle(ctx, domain.SearchInput{Kind: domain.InputKindText, Content: "words"}))
	assert.True(t, s.CanHandle(ctx, domain.SearchInput{Kind: domain.InputKindURL, Content: "https://any.host/x"}))
	assert.False(t, s.CanHandle(ctx, domain.SearchInput{Kind: domain.InputKindMedia, Content: "https://any.host/x.png"}))
}
