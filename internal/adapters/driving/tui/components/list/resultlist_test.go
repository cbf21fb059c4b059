package list

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/provena/internal/core/domain"
)

func int64Ptr(v int64) *int64 { return &v }

func testResult() *domain.SearchResult {
	first := time.Date(2021, 3, 4, 10, 0, 0, 0, time.UTC)
	return &domain.SearchResult{
		OriginalSource: &domain.OriginalSource{
			URL:             "https://reddit.com/r/pics/abc",
			Platform:        "reddit",
			Timestamp:       first,
			ConfidenceScore: 0.8,
		},
		ViralMoments: []domain.ViralMoment{
			{
				URL:       "https://youtube.com/watch?v=1",
				Platform:  "youtube",
				Timestamp: first.Add(48 * time.Hour),
				Metrics:   &domain.EngagementMetrics{Views: int64Ptr(1200)},
			},
			{URL: "https://news.example.com/a", Platform: "news"},
		},
	}
}

func TestRowsFromResult(t *testing.T) {
	rows := RowsFromResult(testResult())

	require.Len(t, rows, 3)
	assert.True(t, rows[0].Original)
	assert.Equal(t, "reddit", rows[0].Platform)
	assert.InDelta(t, 0.8, rows[0].Confidence, 1e-9)
	assert.False(t, rows[1].Original)
	assert.Equal(t, int64(1200), rows[1].Metrics.ViewsOrZero())
	assert.Equal(t, "news", rows[2].Platform)
}

func TestRowsFromResult_NoOriginal(t *testing.T) {
	result := testResult()
	result.OriginalSource = nil

	rows := RowsFromResult(result)
	require.Len(t, rows, 2)
	assert.False(t, rows[0].Original)

	assert.Nil(t, RowsFromResult(nil))
}

func TestResultList_EmptyView(t *testing.T) {
	l := NewResultList(nil)

	assert.True(t, l.IsEmpty())
	assert.Nil(t, l.SelectedRow())
	assert.Contains(t, l.View(), "No appearances")
}

func TestResultList_Navigation(t *testing.T) {
	l := NewResultList(nil)
	l.SetRows(RowsFromResult(testResult()))

	assert.Equal(t, 0, l.Selected())
	l.MoveUp()
	assert.Equal(t, 0, l.Selected())

	l.MoveDown()
	l.MoveDown()
	l.MoveDown()
	assert.Equal(t, 2, l.Selected())

	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	assert.Equal(t, 1, l.Selected())

	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, l.Selected())

	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	assert.Equal(t, 1, l.Selected())
	assert.Equal(t, "youtube", l.SelectedRow().Platform)
}

func TestResultList_SetSelected(t *testing.T) {
	l := NewResultList(nil)
	l.SetRows(RowsFromResult(testResult()))

	l.SetSelected(2)
	assert.Equal(t, 2, l.Selected())

	l.SetSelected(9)
	assert.Equal(t, 2, l.Selected())

	l.SetRows(nil)
	assert.Equal(t, 0, l.Selected())
	assert.Equal(t, 0, l.Count())
}

func TestResultList_View(t *testing.T) {
	l := NewResultList(nil)
	l.SetDimensions(120, 30)
	l.SetRows(RowsFromResult(testResult()))

	view := l.View()
	assert.Contains(t, view, "Appearances (3)")
	assert.Contains(t, view, "origin · reddit")
	assert.Contains(t, view, "confidence 0.80")
	assert.Contains(t, view, "1200 views")
	assert.Contains(t, view, "date unknown")
}

func TestResultList_ViewScrollsToSelection(t *testing.T) {
	l := NewResultList(nil)
	l.SetDimensions(120, 6)
	l.SetRows(RowsFromResult(testResult()))

	l.SetSelected(2)
	view := l.View()
	assert.Contains(t, view, "news.example.com")
	assert.NotContains(t, view, "reddit.com")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
