package redisstore

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/provena/internal/core/domain"
	"github.com/custodia-labs/provena/internal/core/ports/driven"
)

// tokenBucketScript refills and consumes a token bucket atomically.
// KEYS[1] = bucket key
// ARGV[1] = refill rate (tokens per second)
// ARGV[2] = capacity (max tokens)
// ARGV[3] = cost
// ARGV[4] = now (unix seconds, fractional)
// ARGV[5] = idle expiry (seconds)
var tokenBucketScript = redis.NewScript(`
local key = KEYS[1]
local rate = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local cost = tonumber(ARGV[3])
local now = tonumber(ARGV[4])
local ttl = tonumber(ARGV[5])

local state = redis.call("HMGET", key, "tokens", "last_refill")
local tokens = tonumber(state[1])
local last_refill = tonumber(state[2])

if not tokens or not last_refill then
    tokens = capacity
    last_refill = now
end

local elapsed = now - last_refill
if elapsed > 0 then
    tokens = math.min(capacity, tokens + elapsed * rate)
    last_refill = now
end

local allowed = 0
if tokens >= cost then
    tokens = tokens - cost
    allowed = 1
end

redis.call("HSET", key, "tokens", tokens, "last_refill", last_refill)
redis.call("EXPIRE", key, ttl)

return {allowed, tostring(tokens)}
`)

// rateLimiter implements driven.RateLimiter.
type rateLimiter struct {
	store    *Store
	rate     float64
	capacity int
	idleTTL  int64
}

var _ driven.RateLimiter = (*rateLimiter)(nil)

func newRateLimiter(s *Store, cfg domain.RateLimitSettings) *rateLimiter {
	if cfg.Requests <= 0 {
		cfg.Requests = domain.DefaultRateLimitRequests
	}
	if cfg.Window <= 0 {
		cfg.Window = domain.DefaultRateLimitWindow
	}
	if cfg.Burst <= 0 {
		cfg.Burst = domain.DefaultRateLimitBurst
	}
	rate := float64(cfg.Requests) / cfg.Window.Seconds()
	// A bucket left alone long enough to refill completely can be dropped.
	idle := int64(math.Ceil(float64(cfg.Burst)/rate)) + 1
	return &rateLimiter{store: s, rate: rate, capacity: cfg.Burst, idleTTL: idle}
}

func (l *rateLimiter) Allow(ctx context.Context, userID string) (bool, error) {
	now := float64(time.Now().UnixMicro()) / 1e6
	res, err := tokenBucketScript.Run(ctx, l.store.client, []string{l.store.key("ratelimit", userID)},
		l.rate, l.capacity, 1, now, l.idleTTL).Result()
	if err != nil {
		return false, fmt.Errorf("redis limiter: %w", err)
	}

	results, ok := res.([]any)
	if !ok || len(results) != 2 {
		return false, fmt.Errorf("redis limiter: unexpected reply %v", res)
	}
	allowed, _ := results[0].(int64)
	return allowed == 1, nil
}
