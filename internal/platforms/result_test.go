package platforms

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/provena/internal/core/domain"
)

func TestBuildResult(t *testing.T) {
	analysis := domain.ContentAnalysis{Confidence: 0.8}
	t1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t0 := t1.Add(-48 * time.Hour)

	t.Run("no hits", func(t *testing.T) {
		assert.Nil(t, BuildResult("reddit", nil, analysis))
	})

	t.Run("earliest dated hit is the source", func(t *testing.T) {
		hits := []Hit{
			{URL: "https://a", Timestamp: t1, Metrics: &domain.EngagementMetrics{Likes: domain.Count(5)}},
			{URL: "https://undated"},
			{URL: "https://b", Timestamp: t0},
		}

		res := BuildResult("reddit", hits, analysis)

		require.NotNil(t, res)
		assert.Equal(t, "reddit", res.Platform)
		require.Len(t, res.ViralMoments, 3)
		assert.Equal(t, "https://a", res.ViralMoments[0].URL)
		assert.Equal(t, "reddit", res.ViralMoments[0].Platform)
		assert.Equal(t, int64(5), res.ViralMoments[0].Metrics.LikesOrZero())
		require.NotNil(t, res.OriginalSource)
		assert.Equal(t, "https://b", res.OriginalSource.URL)
		assert.Equal(t, t0, res.OriginalSource.Timestamp)
		assert.InDelta(t, 0.8*0.3, res.ConfidenceScore, 1e-9)
		assert.InDelta(t, res.ConfidenceScore, res.OriginalSource.ConfidenceScore, 1e-9)
	})

	t.Run("undated hits fall back to the first", func(t *testing.T) {
		res := BuildResult("web", []Hit{{URL: "https://first"}, {URL: "https://second"}}, analysis)
		assert.Equal(t, "https://first", res.OriginalSource.URL)
	})
}

func TestCoverage(t *testing.T) {
	assert.Zero(t, Coverage(0))
	assert.InDelta(t, 0.1, Coverage(1), 1e-9)
	assert.InDelta(t, 0.5, Coverage(5), 1e-9)
	assert.InDelta(t, 1.0, Coverage(25), 1e-9)
}

func TestQuery(t *testing.T) {
	input := domain.SearchInput{Kind: domain.InputKindText, Content: "  the  quick brown fox "}

	assert.Equal(t, "quick brown", Query(input, domain.ContentAnalysis{KeyElements: []string{"quick", "brown", "jumps"}}, 2))
	assert.Equal(t, "the quick brown fox", Query(input, domain.ContentAnalysis{}, 0))

	long := domain.SearchInput{Kind: domain.InputKindText, Content: string(make([]rune, 300))}
	assert.LessOrEqual(t, len([]rune(Query(long, domain.ContentAnalysis{KeyElements: []string{string(make([]rune, 300))}}, 0))), 200)
}

func TestHostAndSearchable(t *testing.T) {
	assert.Equal(t, "github.com", Host("https://www.GitHub.com/a/b"))
	assert.Equal(t, "", Host("::bad"))

	assert.True(t, IsSearchable(domain.SearchInput{Kind: domain.InputKindText, Content: "hi"}))
	assert.True(t, IsSearchable(domain.SearchInput{Kind: domain.InputKindURL, Content: "https://example.com"}))
	assert.False(t, IsSearchable(domain.SearchInput{Kind: domain.InputKindURL, Content: "example"}))
	assert.False(t, IsSearchable(domain.SearchInput{Kind: domain.InputKindMedia, Content: "https://example.com/a.png"}))
}
