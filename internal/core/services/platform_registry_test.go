package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/provena/internal/core/domain"
)

var textInput = domain.SearchInput{Kind: domain.InputKindText, Content: "moon landing hoax"}

func TestPlatformRegistry_SearchAcrossPlatforms(t *testing.T) {
	reddit := &mockPlatform{name: "reddit", canHandle: true, result: &domain.PlatformSearchResult{ConfidenceScore: 0.6}}
	youtube := &mockPlatform{name: "youtube", canHandle: false}
	failing := &mockPlatform{name: "twitter", canHandle: true, err: assertErr}
	web := &mockPlatform{name: "web", canHandle: true, result: &domain.PlatformSearchResult{Platform: "web", ConfidenceScore: 0.4}}
	registry := NewPlatformRegistry(reddit, youtube, failing, web)

	results, err := registry.SearchAcrossPlatforms(context.Background(), textInput, AnalyzeContent(textInput))

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "reddit", results[0].Platform, "missing platform name is filled in")
	assert.Equal(t, "web", results[1].Platform)
	assert.Zero(t, youtube.calls.Load())
	assert.Equal(t, int32(1), failing.calls.Load())
}

func TestPlatformRegistry_NilResultSkipped(t *testing.T) {
	registry := NewPlatformRegistry(&mockPlatform{name: "news", canHandle: true})

	results, err := registry.SearchAcrossPlatforms(context.Background(), textInput, domain.ContentAnalysis{})

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestPlatformRegistry_Register(t *testing.T) {
	registry := NewPlatformRegistry(&mockPlatform{name: "reddit"}, &mockPlatform{name: "web"})
	replacement := &mockPlatform{name: "reddit", canHandle: true, result: &domain.PlatformSearchResult{}}

	registry.Register(replacement)
	registry.Register(&mockPlatform{name: "github"})

	assert.Equal(t, []string{"reddit", "web", "github"}, registry.Platforms())

	_, err := registry.SearchAcrossPlatforms(context.Background(), textInput, domain.ContentAnalysis{})
	require.NoError(t, err)
	assert.Equal(t, int32(1), replacement.calls.Load())
}

func TestPlatformRegistry_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	registry := NewPlatformRegistry(&mockPlatform{name: "reddit", canHandle: true, result: &domain.PlatformSearchResult{}})

	_, err := registry.SearchAcrossPlatforms(ctx, textInput, domain.ContentAnalysis{})

	assert.ErrorIs(t, err, context.Canceled)
}
