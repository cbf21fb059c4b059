package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInputKind_IsValid(t *testing.T) {
	assert.True(t, InputKindURL.IsValid())
	assert.True(t, InputKindText.IsValid())
	assert.True(t, InputKindMedia.IsValid())
	assert.False(t, InputKind("audio").IsValid())
	assert.False(t, InputKind("").IsValid())
}

func TestInputKind_Cost(t *testing.T) {
	assert.Equal(t, 1, InputKindURL.Cost())
	assert.Equal(t, 1, InputKindText.Cost())
	assert.Equal(t, 3, InputKindMedia.Cost())
}

func TestSearchInput_Fingerprint(t *testing.T) {
	a := SearchInput{Kind: InputKindText, Content: "hello world"}
	b := SearchInput{Kind: InputKindText, Content: "hello world"}
	c := SearchInput{Kind: InputKindURL, Content: "hello world"}
	d := SearchInput{Kind: InputKindText, Content: "hello world "}

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), d.Fingerprint())
	assert.Len(t, a.Fingerprint(), 64)
}

func TestSearchInput_Validate(t *testing.T) {
	tests := []struct {
		name    string
		input   SearchInput
		wantErr bool
	}{
		{"valid text", SearchInput{Kind: InputKindText, Content: "claim"}, false},
		{"valid url", SearchInput{Kind: InputKindURL, Content: "https://example.com"}, false},
		{"blank content", SearchInput{Kind: InputKindText, Content: "   "}, true},
		{"unknown kind", SearchInput{Kind: "audio", Content: "x"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate()
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidInput))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSearchInput_IsWellFormed(t *testing.T) {
	assert.True(t, SearchInput{Kind: InputKindURL, Content: "https://example.com/a"}.IsWellFormed())
	assert.True(t, SearchInput{Kind: InputKindMedia, Content: "http://cdn.example.com/a.png"}.IsWellFormed())
	assert.False(t, SearchInput{Kind: InputKindURL, Content: "not a url"}.IsWellFormed())
	assert.False(t, SearchInput{Kind: InputKindURL, Content: "ftp://example.com"}.IsWellFormed())
	assert.True(t, SearchInput{Kind: InputKindText, Content: "some text"}.IsWellFormed())
	assert.False(t, SearchInput{Kind: InputKindText, Content: ""}.IsWellFormed())
}

func TestEngagementMetrics_OrZero(t *testing.T) {
	var nilMetrics *EngagementMetrics
	assert.Zero(t, nilMetrics.ViewsOrZero())
	assert.Zero(t, nilMetrics.SharesOrZero())
	assert.Zero(t, nilMetrics.LikesOrZero())

	m := &EngagementMetrics{Views: Count(10), Likes: Count(3)}
	assert.Equal(t, int64(10), m.ViewsOrZero())
	assert.Zero(t, m.SharesOrZero())
	assert.Equal(t, int64(3), m.LikesOrZero())
}

func TestSearchResult_IsEmpty(t *testing.T) {
	assert.True(t, (&SearchResult{}).IsEmpty())
	assert.False(t, (&SearchResult{Platforms: []string{"reddit"}}).IsEmpty())
	assert.False(t, (&SearchResult{ViralMoments: []ViralMoment{{URL: "u"}}}).IsEmpty())
}

func TestQuotaRecord_Expired(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rec := QuotaRecord{UserID: "u", Count: 3, WindowStart: start}

	assert.False(t, rec.Expired(start.Add(time.Hour), 24*time.Hour))
	assert.True(t, rec.Expired(start.Add(24*time.Hour), 24*time.Hour))
	assert.Equal(t, 2, rec.Remaining(5))
	assert.Equal(t, 0, rec.Remaining(2))
}
