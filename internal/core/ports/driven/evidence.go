package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/provena/internal/core/domain"
)

// EvidenceSearcher queries a web search provider for evidence.
//
// Implementations may include:
//   - Brave Search API
type EvidenceSearcher interface {
	// Search returns evidence items in provider rank order.
	Search(ctx context.Context, query string, limit int) ([]domain.EvidenceItem, error)

	// Name returns the provider name.
	Name() string
}

// DatedEvidence is an optional extension for providers that report page age.
// Platform searchers use it to date original-source candidates.
type DatedEvidence interface {
	SearchDated(ctx context.Context, query string, limit int) ([]DatedItem, error)
}

// DatedItem is an evidence item with its publication time, zero when unknown.
type DatedItem struct {
	domain.EvidenceItem
	PublishedAt time.Time
}
