package memory

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/provena/internal/core/domain"
	"github.com/custodia-labs/provena/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.RateLimiter = (*RateLimiter)(nil)

// RateLimiter gives every user their own token bucket.
// Buckets refill at Requests per Window and hold at most Burst tokens.
// A full bucket behaves like a new one, so full buckets are dropped on a
// periodic sweep and the map only holds recently active users.
type RateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*rate.Limiter
	limit     rate.Limit
	burst     int
	refill    time.Duration // time for an empty bucket to fill
	lastSweep time.Time
	now       func() time.Time
}

// NewRateLimiter creates a per-user rate limiter.
// Zero fields fall back to the default rate limit settings.
func NewRateLimiter(cfg domain.RateLimitSettings) *RateLimiter {
	if cfg.Requests <= 0 {
		cfg.Requests = domain.DefaultRateLimitRequests
	}
	if cfg.Window <= 0 {
		cfg.Window = domain.DefaultRateLimitWindow
	}
	if cfg.Burst <= 0 {
		cfg.Burst = domain.DefaultRateLimitBurst
	}

	every := cfg.Window / time.Duration(cfg.Requests)
	return &RateLimiter{
		limiters:  make(map[string]*rate.Limiter),
		limit:     rate.Every(every),
		burst:     cfg.Burst,
		refill:    every * time.Duration(cfg.Burst),
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// Allow reports whether userID may make a request now.
// The token is taken under the lock so a sweep never drops a bucket
// mid-request.
func (r *RateLimiter) Allow(_ context.Context, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if now.Sub(r.lastSweep) >= r.refill {
		r.sweep(now)
	}

	l, ok := r.limiters[userID]
	if !ok {
		l = rate.NewLimiter(r.limit, r.burst)
		r.limiters[userID] = l
	}
	return l.AllowN(now, 1), nil
}

// sweep drops every bucket that has refilled completely.
func (r *RateLimiter) sweep(now time.Time) {
	for user, l := range r.limiters {
		if l.TokensAt(now) >= float64(r.burst) {
			delete(r.limiters, user)
		}
	}
	r.lastSweep = now
}

// Len returns the number of tracked buckets.
func (r *RateLimiter) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.limiters)
}
