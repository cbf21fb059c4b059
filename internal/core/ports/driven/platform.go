package driven

import (
	"context"

	"github.com/custodia-labs/provena/internal/core/domain"
)

// PlatformSearcher looks for a piece of content on one platform.
// CanHandle must be cheap and side-effect free; it may run concurrently
// with other searchers.
type PlatformSearcher interface {
	// Platform returns the platform name, e.g. "reddit".
	Platform() string

	// CanHandle reports whether this searcher applies to the input.
	CanHandle(ctx context.Context, input domain.SearchInput) bool

	// Search returns what the platform knows about the input.
	Search(ctx context.Context, input domain.SearchInput, analysis domain.ContentAnalysis) (*domain.PlatformSearchResult, error)
}
