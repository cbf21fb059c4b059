package tui

import (
	"context"

	"github.com/custodia-labs/provena/internal/core/domain"
	"github.com/custodia-labs/provena/internal/core/ports/driving"
)

// MockSearchService returns a fixed result.
type MockSearchService struct {
	Result *domain.SearchResult
	Err    error
	Calls  int
}

var _ driving.SearchService = (*MockSearchService)(nil)

func (m *MockSearchService) Search(_ context.Context, _ domain.SearchInput, _ string) (*domain.SearchResult, error) {
	m.Calls++
	return m.Result, m.Err
}

func (m *MockSearchService) Analyze(domain.SearchInput) domain.ContentAnalysis {
	return domain.ContentAnalysis{}
}

// MockExtractionRouter returns fixed content.
type MockExtractionRouter struct {
	Content *domain.NormalizedContent
	Err     error
}

var _ driving.ExtractionRouter = (*MockExtractionRouter)(nil)

func (m *MockExtractionRouter) Extract(_ context.Context, _ string) (*domain.NormalizedContent, error) {
	return m.Content, m.Err
}
