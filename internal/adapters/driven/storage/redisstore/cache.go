package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/provena/internal/core/domain"
	"github.com/custodia-labs/provena/internal/core/ports/driven"
)

// resultCache implements driven.ResultCache with SET NX.
type resultCache struct {
	store *Store
	ttl   time.Duration
}

var _ driven.ResultCache = (*resultCache)(nil)

func (c *resultCache) Get(ctx context.Context, fingerprint string) (*domain.SearchResult, error) {
	data, err := c.store.client.Get(ctx, c.store.key("cache", fingerprint)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis cache get: %w", err)
	}
	var result domain.SearchResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("redis cache decode: %w", err)
	}
	return &result, nil
}

func (c *resultCache) PutIfAbsent(ctx context.Context, fingerprint string, result *domain.SearchResult) (bool, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return false, fmt.Errorf("redis cache encode: %w", err)
	}
	stored, err := c.store.client.SetNX(ctx, c.store.key("cache", fingerprint), data, c.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis cache put: %w", err)
	}
	return stored, nil
}
