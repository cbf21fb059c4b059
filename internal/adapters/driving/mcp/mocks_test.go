package mcp

import (
	"context"

	"github.com/custodia-labs/provena/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	result    *domain.SearchResult
	err       error
	lastInput domain.SearchInput
	lastUser  string
}

func (m *mockSearchService) Search(_ context.Context, input domain.SearchInput, userID string) (*domain.SearchResult, error) {
	m.lastInput = input
	m.lastUser = userID
	if m.err != nil {
		return nil, m.err
	}
	if m.result == nil {
		return &domain.SearchResult{Input: input}, nil
	}
	return m.result, nil
}

func (m *mockSearchService) Analyze(_ domain.SearchInput) domain.ContentAnalysis {
	return domain.ContentAnalysis{}
}

// mockExtractionRouter is a mock implementation of driving.ExtractionRouter.
type mockExtractionRouter struct {
	content *domain.NormalizedContent
	err     error
}

func (m *mockExtractionRouter) Extract(_ context.Context, _ string) (*domain.NormalizedContent, error) {
	return m.content, m.err
}

// mockTraceService is a mock implementation of driving.TraceService.
type mockTraceService struct {
	result    *domain.TraceResult
	legacy    []domain.LegacyResult
	primary   *domain.PrimaryThought
	secondary []domain.Thought
	err       error
	similar   []domain.SimilarThought
	lastQuery domain.LegacyQuery
	lastUser  string
	lastText  string
	lastK     int
}

func (m *mockTraceService) TraceSearch(_ context.Context, userID string, _ *domain.NormalizedContent) (*domain.TraceResult, error) {
	m.lastUser = userID
	return m.result, m.err
}

func (m *mockTraceService) LegacySearch(_ context.Context, q domain.LegacyQuery) ([]domain.LegacyResult, error) {
	m.lastQuery = q
	return m.legacy, m.err
}

func (m *mockTraceService) Search(ctx context.Context, req domain.TraceRequest) (*domain.TraceResponse, error) {
	if req.Mode == domain.TraceModeLegacy {
		res, err := m.LegacySearch(ctx, req.Legacy)
		return &domain.TraceResponse{Mode: req.Mode, Legacy: res}, err
	}
	res, err := m.TraceSearch(ctx, req.UserID, req.Content)
	return &domain.TraceResponse{Mode: req.Mode, Trace: res}, err
}

func (m *mockTraceService) GetPrimaryThought(_ context.Context, _ string) (*domain.PrimaryThought, error) {
	return m.primary, m.err
}

func (m *mockTraceService) GetSecondaryThoughts(_ context.Context, _ string) ([]domain.Thought, error) {
	return m.secondary, m.err
}

func (m *mockTraceService) GetSimilarThoughts(_ context.Context, text string, k int) ([]domain.SimilarThought, error) {
	m.lastText, m.lastK = text, k
	return m.similar, m.err
}

// mockPlatformRegistry is a mock implementation of driving.PlatformRegistry.
type mockPlatformRegistry struct {
	names []string
}

func (m *mockPlatformRegistry) SearchAcrossPlatforms(
	_ context.Context, _ domain.SearchInput, _ domain.ContentAnalysis,
) ([]domain.PlatformSearchResult, error) {
	return nil, nil
}

func (m *mockPlatformRegistry) Platforms() []string {
	return m.names
}
