// Package redisstore provides Redis-backed implementations of the storage ports.
// It suits deployments where several processes share quotas, rate limits
// and cached results.
package redisstore

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/provena/internal/core/domain"
	"github.com/custodia-labs/provena/internal/core/ports/driven"
)

// DefaultPrefix namespaces every key written by the store.
const DefaultPrefix = "provena:"

// Store wraps a Redis client and hands out the storage ports.
type Store struct {
	client *redis.Client
	prefix string
}

// NewStore creates a store for the configured Redis server.
// The connection is checked with a ping.
func NewStore(ctx context.Context, cfg domain.StorageSettings) (*Store, error) {
	addr := cfg.RedisAddr
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}
	return &Store{client: client, prefix: DefaultPrefix}, nil
}

// WithPrefix returns a store sharing the client but writing under prefix.
func (s *Store) WithPrefix(prefix string) *Store {
	return &Store{client: s.client, prefix: prefix}
}

// Close closes the client.
func (s *Store) Close() error {
	return s.client.Close()
}

// KeyValueStore returns a KeyValueStore backed by this store.
func (s *Store) KeyValueStore() driven.KeyValueStore {
	return &kvStore{store: s}
}

// QuotaStore returns a QuotaStore backed by this store.
func (s *Store) QuotaStore() driven.QuotaStore {
	return &quotaStore{store: s}
}

// ResultCache returns a ResultCache backed by this store.
// Entries expire after the configured TTL; Redis eviction bounds the total.
func (s *Store) ResultCache(cfg domain.CacheSettings) driven.ResultCache {
	if cfg.TTL <= 0 {
		cfg.TTL = domain.DefaultCacheTTL
	}
	return &resultCache{store: s, ttl: cfg.TTL}
}

// RateLimiter returns a RateLimiter shared by every process using this server.
func (s *Store) RateLimiter(cfg domain.RateLimitSettings) driven.RateLimiter {
	return newRateLimiter(s, cfg)
}

// HistoryStore returns a HistoryStore backed by this store.
func (s *Store) HistoryStore() driven.HistoryStore {
	return &historyStore{store: s}
}

func (s *Store) key(parts ...string) string {
	k := s.prefix
	for i, p := range parts {
		if i > 0 {
			k += ":"
		}
		k += p
	}
	return k
}
