package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/provena/internal/core/domain"
	"github.com/custodia-labs/provena/internal/core/ports/driven"
	"github.com/custodia-labs/provena/internal/core/ports/driving"
	"github.com/custodia-labs/provena/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// SearchService runs cross-platform provenance searches.
type SearchService struct {
	registry driving.PlatformRegistry
	cache    driven.ResultCache
	limiter  driven.RateLimiter
	history  driven.HistoryStore
	quota    *QuotaService
	now      func() time.Time
}

// NewSearchService creates a search service.
// The cache and limiter parameters are optional (can be nil).
func NewSearchService(registry driving.PlatformRegistry, cache driven.ResultCache, limiter driven.RateLimiter) *SearchService {
	return &SearchService{
		registry: registry,
		cache:    cache,
		limiter:  limiter,
		now:      time.Now,
	}
}

// SetHistoryStore enables search history.
func (s *SearchService) SetHistoryStore(store driven.HistoryStore) {
	s.history = store
}

// SetQuotaService charges each uncached search to the user's quota,
// weighted by input kind.
func (s *SearchService) SetQuotaService(quota *QuotaService) {
	s.quota = quota
}

// Analyze computes key elements and heuristic confidence for the input.
func (s *SearchService) Analyze(input domain.SearchInput) domain.ContentAnalysis {
	return AnalyzeContent(input)
}

// Search answers where the input has appeared. A cache hit returns the stored
// result without calling any platform.
func (s *SearchService) Search(ctx context.Context, input domain.SearchInput, userID string) (*domain.SearchResult, error) {
	logger.Section("Provenance Search")
	logger.Debug("Input: kind=%s content=%q", input.Kind, truncate(input.Content, 120))

	if err := input.Validate(); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	if userID != "" && s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
		if !allowed {
			logger.Info("Rate limit exceeded for %s", userID)
			return nil, domain.ErrRateLimitExceeded
		}
	}

	fingerprint := input.Fingerprint()
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, fingerprint)
		switch {
		case err == nil:
			logger.Info("Cache hit: %s", fingerprint[:12])
			return cached, nil
		case !errors.Is(err, domain.ErrNotFound):
			logger.Warn("Cache lookup failed: %v", err)
		}
	}

	// Cache hits call no platform and are free.
	if userID != "" && s.quota != nil {
		if err := s.quota.Consume(ctx, userID, input.Kind.Cost()); err != nil {
			return nil, err
		}
	}

	analysis := s.Analyze(input)
	logger.Debug("Analysis: %d key elements, confidence %.2f", len(analysis.KeyElements), analysis.Confidence)

	results, err := s.registry.SearchAcrossPlatforms(ctx, input, analysis)
	if err != nil {
		return nil, fmt.Errorf("search platforms: %w", err)
	}

	combined := CombineResults(input, analysis, results, s.now())
	logger.Info("Combined %d platform results, confidence %.2f", len(results), combined.ConfidenceScore)

	if s.cache != nil {
		// Callers always get the cached copy, so this result is identical to
		// every later hit. When a concurrent search stored first, that entry wins.
		if _, err := s.cache.PutIfAbsent(ctx, fingerprint, combined); err != nil {
			logger.Warn("Cache store failed: %v", err)
		} else if existing, getErr := s.cache.Get(ctx, fingerprint); getErr == nil {
			combined = existing
		}
	}

	s.recordHistory(ctx, userID, input, fingerprint)
	return combined, nil
}

func (s *SearchService) recordHistory(ctx context.Context, userID string, input domain.SearchInput, ref string) {
	if s.history == nil || userID == "" {
		return
	}
	entry := domain.HistoryEntry{
		ID:        uuid.NewString(),
		UserID:    userID,
		Kind:      domain.HistoryKindSearch,
		Query:     truncate(input.Content, 200),
		ResultRef: ref,
		CreatedAt: s.now().UTC(),
	}
	if err := s.history.Append(ctx, entry); err != nil {
		logger.Warn("Failed to record history: %v", err)
	}
}

// HistoryService lists past searches.
type HistoryService struct {
	store driven.HistoryStore
}

// Ensure HistoryService implements the interface.
var _ driving.HistoryService = (*HistoryService)(nil)

// NewHistoryService creates a history service.
func NewHistoryService(store driven.HistoryStore) *HistoryService {
	return &HistoryService{store: store}
}

// List returns a user's newest entries first.
func (h *HistoryService) List(ctx context.Context, userID string, limit int) ([]domain.HistoryEntry, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = 20
	}
	entries, err := h.store.List(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return entries, nil
}
