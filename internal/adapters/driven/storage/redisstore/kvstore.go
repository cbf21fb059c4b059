package redisstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/provena/internal/core/domain"
	"github.com/custodia-labs/provena/internal/core/ports/driven"
)

// kvStore implements driven.KeyValueStore with strings and lists.
type kvStore struct {
	store *Store
}

var _ driven.KeyValueStore = (*kvStore)(nil)

func (s *kvStore) Put(ctx context.Context, key string, value []byte) error {
	if err := s.store.client.Set(ctx, s.store.key("kv", key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// PutSet replaces the list under key atomically.
func (s *kvStore) PutSet(ctx context.Context, key string, values [][]byte) error {
	k := s.store.key("kv", key)
	_, err := s.store.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, k)
		if len(values) > 0 {
			args := make([]any, len(values))
			for i, v := range values {
				args[i] = v
			}
			pipe.RPush(ctx, k, args...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis put set %s: %w", key, err)
	}
	return nil
}

func (s *kvStore) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.store.client.Get(ctx, s.store.key("kv", key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return b, nil
}

func (s *kvStore) GetSet(ctx context.Context, key string) ([][]byte, error) {
	items, err := s.store.client.LRange(ctx, s.store.key("kv", key), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis get set %s: %w", key, err)
	}
	out := make([][]byte, len(items))
	for i, it := range items {
		out[i] = []byte(it)
	}
	return out, nil
}

func (s *kvStore) Delete(ctx context.Context, key string) error {
	if err := s.store.client.Del(ctx, s.store.key("kv", key)).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", key, err)
	}
	return nil
}
