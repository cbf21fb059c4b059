package redisstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/provena/internal/core/domain"
	"github.com/custodia-labs/provena/internal/core/ports/driven"
)

// maxHistory caps the entries kept per user.
const maxHistory = 1000

// historyStore implements driven.HistoryStore with one list per user, newest first.
type historyStore struct {
	store *Store
}

var _ driven.HistoryStore = (*historyStore)(nil)

func (s *historyStore) Append(ctx context.Context, entry domain.HistoryEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("redis history encode: %w", err)
	}
	k := s.store.key("history", entry.UserID)
	_, err = s.store.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, k, data)
		pipe.LTrim(ctx, k, 0, maxHistory-1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis history append: %w", err)
	}
	return nil
}

func (s *historyStore) List(ctx context.Context, userID string, limit int) ([]domain.HistoryEntry, error) {
	stop := int64(limit) - 1
	if limit <= 0 {
		stop = -1
	}
	items, err := s.store.client.LRange(ctx, s.store.key("history", userID), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("redis history list: %w", err)
	}
	entries := make([]domain.HistoryEntry, 0, len(items))
	for _, it := range items {
		var e domain.HistoryEntry
		if err := json.Unmarshal([]byte(it), &e); err != nil {
			return nil, fmt.Errorf("redis history decode: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
