package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/provena/internal/core/domain"
	"github.com/custodia-labs/provena/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.ResultCache = (*ResultCache)(nil)

// ResultCache keeps search results in memory with a TTL.
// When full, the entry closest to expiry is evicted.
// Results are stored encoded so callers never share mutable state.
type ResultCache struct {
	mu         sync.Mutex
	entries    map[string]cacheEntry
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

type cacheEntry struct {
	data      []byte
	expiresAt time.Time
}

// NewResultCache creates a cache. Zero settings fall back to defaults.
func NewResultCache(cfg domain.CacheSettings) *ResultCache {
	if cfg.TTL <= 0 {
		cfg.TTL = domain.DefaultCacheTTL
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = domain.DefaultCacheMaxEntries
	}
	return &ResultCache{
		entries:    make(map[string]cacheEntry),
		ttl:        cfg.TTL,
		maxEntries: cfg.MaxEntries,
		now:        time.Now,
	}
}

// Get returns the cached result for fingerprint.
func (c *ResultCache) Get(_ context.Context, fingerprint string) (*domain.SearchResult, error) {
	c.mu.Lock()
	e, ok := c.entries[fingerprint]
	if ok && !c.now().Before(e.expiresAt) {
		delete(c.entries, fingerprint)
		ok = false
	}
	c.mu.Unlock()
	if !ok {
		return nil, domain.ErrNotFound
	}

	var result domain.SearchResult
	if err := json.Unmarshal(e.data, &result); err != nil {
		return nil, fmt.Errorf("decode cached result: %w", err)
	}
	return &result, nil
}

// PutIfAbsent stores result unless a live entry exists.
func (c *ResultCache) PutIfAbsent(_ context.Context, fingerprint string, result *domain.SearchResult) (bool, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return false, fmt.Errorf("encode result: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if e, ok := c.entries[fingerprint]; ok && now.Before(e.expiresAt) {
		return false, nil
	}
	if len(c.entries) >= c.maxEntries {
		c.evict(now)
	}
	c.entries[fingerprint] = cacheEntry{data: data, expiresAt: now.Add(c.ttl)}
	return true, nil
}

// Len returns the number of stored entries, expired ones included.
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evict drops expired entries, or the one expiring soonest if none have.
func (c *ResultCache) evict(now time.Time) {
	var (
		oldestKey string
		oldest    time.Time
	)
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
			continue
		}
		if oldestKey == "" || e.expiresAt.Before(oldest) {
			oldestKey, oldest = k, e.expiresAt
		}
	}
	if len(c.entries) >= c.maxEntries && oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}
