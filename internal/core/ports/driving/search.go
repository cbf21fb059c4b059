package driving

import (
	"context"

	"github.com/custodia-labs/provena/internal/core/domain"
)

// ExtractionRouter turns an arbitrary URL into normalised content.
type ExtractionRouter interface {
	// Extract runs the strategy chain. It fails with domain.ErrUnsupportedInput
	// when no strategy produced content.
	Extract(ctx context.Context, rawURL string) (*domain.NormalizedContent, error)
}

// TraceService runs the thought pipeline.
type TraceService interface {
	// TraceSearch extracts, ranks, evidences and persists the thoughts in content.
	TraceSearch(ctx context.Context, userID string, content *domain.NormalizedContent) (*domain.TraceResult, error)

	// LegacySearch runs a single-shot evidence search over free text.
	LegacySearch(ctx context.Context, query domain.LegacyQuery) ([]domain.LegacyResult, error)

	// Search dispatches on req.Mode to TraceSearch or LegacySearch.
	Search(ctx context.Context, req domain.TraceRequest) (*domain.TraceResponse, error)

	// GetPrimaryThought loads a persisted primary thought.
	GetPrimaryThought(ctx context.Context, primaryID string) (*domain.PrimaryThought, error)

	// GetSecondaryThoughts loads the secondary set of a primary thought,
	// ordered by descending score.
	GetSecondaryThoughts(ctx context.Context, primaryID string) ([]domain.Thought, error)

	// GetSimilarThoughts ranks persisted primary thoughts by embedding
	// similarity to text and returns at most k of them.
	GetSimilarThoughts(ctx context.Context, text string, k int) ([]domain.SimilarThought, error)
}

// PlatformRegistry fans a search out across platform searchers.
type PlatformRegistry interface {
	// SearchAcrossPlatforms returns one result per platform that could handle the input.
	SearchAcrossPlatforms(ctx context.Context, input domain.SearchInput, analysis domain.ContentAnalysis) ([]domain.PlatformSearchResult, error)

	// Platforms lists the registered platform names.
	Platforms() []string
}

// SearchService answers "where has this appeared and who had it first".
type SearchService interface {
	// Search runs rate limiting, caching, analysis and the platform fan-out.
	// userID may be empty, which skips rate limiting and history.
	Search(ctx context.Context, input domain.SearchInput, userID string) (*domain.SearchResult, error)

	// Analyze computes key elements and heuristic confidence for the input.
	Analyze(input domain.SearchInput) domain.ContentAnalysis
}

// HistoryService exposes a user's past searches.
type HistoryService interface {
	List(ctx context.Context, userID string, limit int) ([]domain.HistoryEntry, error)
}

// QuotaService reports a user's remaining trace quota.
type QuotaService interface {
	Status(ctx context.Context, userID string) (domain.QuotaRecord, int, error)
}
