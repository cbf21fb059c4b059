package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/provena/internal/core/domain"
	"github.com/custodia-labs/provena/internal/core/ports/driven"
)

// quotaScript resets an elapsed window and consumes cost atomically.
// KEYS[1] = quota hash
// ARGV[1] = cost
// ARGV[2] = limit
// ARGV[3] = window (milliseconds)
// ARGV[4] = now (unix milliseconds)
var quotaScript = redis.NewScript(`
local key = KEYS[1]
local cost = tonumber(ARGV[1])
local limit = tonumber(ARGV[2])
local window = tonumber(ARGV[3])
local now = tonumber(ARGV[4])

local state = redis.call("HMGET", key, "count", "window_start")
local count = tonumber(state[1])
local start = tonumber(state[2])

if not count or not start or now - start >= window then
    count = 0
    start = now
end

if count + cost > limit then
    return {0, count, start}
end

count = count + cost
redis.call("HSET", key, "count", count, "window_start", start)
redis.call("PEXPIREAT", key, start + window)

return {1, count, start}
`)

// quotaStore implements driven.QuotaStore.
type quotaStore struct {
	store *Store
}

var _ driven.QuotaStore = (*quotaStore)(nil)

func (s *quotaStore) Consume(
	ctx context.Context, userID string, cost, limit int, window time.Duration,
) (domain.QuotaRecord, bool, error) {
	now := time.Now().UnixMilli()
	res, err := quotaScript.Run(ctx, s.store.client, []string{s.store.key("quota", userID)},
		cost, limit, window.Milliseconds(), now).Result()
	if err != nil {
		return domain.QuotaRecord{}, false, fmt.Errorf("redis quota: %w", err)
	}

	values, ok := res.([]any)
	if !ok || len(values) != 3 {
		return domain.QuotaRecord{}, false, fmt.Errorf("redis quota: unexpected reply %v", res)
	}
	allowed, _ := values[0].(int64)
	count, _ := values[1].(int64)
	start, _ := values[2].(int64)

	return domain.QuotaRecord{
		UserID:      userID,
		Count:       int(count),
		WindowStart: time.UnixMilli(start),
	}, allowed == 1, nil
}

func (s *quotaStore) Get(ctx context.Context, userID string) (domain.QuotaRecord, error) {
	rec := domain.QuotaRecord{UserID: userID}
	vals, err := s.store.client.HMGet(ctx, s.store.key("quota", userID), "count", "window_start").Result()
	if errors.Is(err, redis.Nil) {
		return rec, nil
	}
	if err != nil {
		return rec, fmt.Errorf("redis quota: %w", err)
	}
	countStr, _ := vals[0].(string)
	startStr, _ := vals[1].(string)
	if countStr == "" || startStr == "" {
		return rec, nil
	}
	count, err := strconv.Atoi(countStr)
	if err != nil {
		return rec, fmt.Errorf("redis quota: bad count %q", countStr)
	}
	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil {
		return rec, fmt.Errorf("redis quota: bad window start %q", startStr)
	}
	rec.Count = count
	rec.WindowStart = time.UnixMilli(start)
	return rec, nil
}
