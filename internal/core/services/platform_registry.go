package services

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/provena/internal/core/domain"
	"github.com/custodia-labs/provena/internal/core/ports/driven"
	"github.com/custodia-labs/provena/internal/core/ports/driving"
	"github.com/custodia-labs/provena/internal/logger"
)

// Ensure PlatformRegistry implements the interface.
var _ driving.PlatformRegistry = (*PlatformRegistry)(nil)

// PlatformRegistry holds the platform searchers and fans searches out to them.
type PlatformRegistry struct {
	mu        sync.RWMutex
	searchers []driven.PlatformSearcher
}

// NewPlatformRegistry creates a registry with the given searchers.
func NewPlatformRegistry(searchers ...driven.PlatformSearcher) *PlatformRegistry {
	r := &PlatformRegistry{}
	for _, s := range searchers {
		r.Register(s)
	}
	return r
}

// Register adds a searcher. A searcher for an already registered platform replaces it.
func (r *PlatformRegistry) Register(s driven.PlatformSearcher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.searchers {
		if existing.Platform() == s.Platform() {
			r.searchers[i] = s
			return
		}
	}
	r.searchers = append(r.searchers, s)
}

// Platforms lists registered platform names in registration order.
func (r *PlatformRegistry) Platforms() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.searchers))
	for i, s := range r.searchers {
		names[i] = s.Platform()
	}
	return names
}

// SearchAcrossPlatforms asks every searcher whether it can handle the input,
// then searches the ones that can. Both rounds run concurrently. A searcher
// that fails is logged and left out. Results keep registration order.
func (r *PlatformRegistry) SearchAcrossPlatforms(
	ctx context.Context, input domain.SearchInput, analysis domain.ContentAnalysis,
) ([]domain.PlatformSearchResult, error) {
	r.mu.RLock()
	searchers := append([]driven.PlatformSearcher(nil), r.searchers...)
	r.mu.RUnlock()

	logger.Section("Platform Search")

	eligible := make([]bool, len(searchers))
	var g errgroup.Group
	for i, s := range searchers {
		g.Go(func() error {
			eligible[i] = s.CanHandle(ctx, input)
			return nil
		})
	}
	_ = g.Wait()

	results := make([]*domain.PlatformSearchResult, len(searchers))
	var sg errgroup.Group
	for i, s := range searchers {
		if !eligible[i] {
			logger.Debug("Platform %s: cannot handle %s input", s.Platform(), input.Kind)
			continue
		}
		sg.Go(func() error {
			res, err := s.Search(ctx, input, analysis)
			if err != nil {
				logger.Warn("Platform %s failed: %v", s.Platform(), err)
				return nil
			}
			if res != nil && res.Platform == "" {
				res.Platform = s.Platform()
			}
			results[i] = res
			return nil
		})
	}
	_ = sg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]domain.PlatformSearchResult, 0, len(results))
	for _, res := range results {
		if res != nil {
			out = append(out, *res)
		}
	}
	logger.Debug("Platforms answered: %d of %d", len(out), len(searchers))
	return out, nil
}
