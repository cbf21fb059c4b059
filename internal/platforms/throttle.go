package platforms

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Rate limit headers understood by Observe.
const (
	HeaderRateRemaining = "X-RateLimit-Remaining"
	HeaderRateReset     = "X-RateLimit-Reset"
	HeaderRetryAfter    = "Retry-After"
)

// DefaultBackoff is used when a 429 carries no usable Retry-After.
const DefaultBackoff = 60 * time.Second

// ThrottleConfig configures a Throttle.
type ThrottleConfig struct {
	// RequestsPerSecond is the sustained request rate.
	RequestsPerSecond float64

	// Burst is the number of requests allowed back to back.
	Burst int
}

// Throttle paces outbound requests to one platform. It combines a token
// bucket with the platform's own signals: a 429 or an exhausted
// X-RateLimit-Remaining pauses requests until the advertised reset.
type Throttle struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
}

// NewThrottle creates a throttle. A non-positive rate disables the bucket.
func NewThrottle(cfg ThrottleConfig) *Throttle {
	limit := rate.Limit(cfg.RequestsPerSecond)
	if cfg.RequestsPerSecond <= 0 {
		limit = rate.Inf
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	return &Throttle{limiter: rate.NewLimiter(limit, cfg.Burst)}
}

// Wait blocks until a request may be sent, honouring any backoff recorded
// by Observe.
func (t *Throttle) Wait(ctx context.Context) error {
	t.mu.Lock()
	retryAt := t.retryAt
	t.mu.Unlock()

	if wait := time.Until(retryAt); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return t.limiter.Wait(ctx)
}

// Observe records the rate limit state a response advertises.
func (t *Throttle) Observe(resp *http.Response) {
	if resp == nil {
		return
	}

	now := time.Now()
	var until time.Time

	if resp.StatusCode == http.StatusTooManyRequests {
		until = now.Add(DefaultBackoff)
		if v := resp.Header.Get(HeaderRetryAfter); v != "" {
			if seconds, err := strconv.Atoi(v); err == nil && seconds >= 0 {
				until = now.Add(time.Duration(seconds) * time.Second)
			}
		}
	}

	if remaining := resp.Header.Get(HeaderRateRemaining); remaining == "0" {
		if reset, err := strconv.ParseInt(resp.Header.Get(HeaderRateReset), 10, 64); err == nil {
			if at := time.Unix(reset, 0); at.After(until) {
				until = at
			}
		}
	}

	if until.IsZero() {
		return
	}

	t.mu.Lock()
	if until.After(t.retryAt) {
		t.retryAt = until
	}
	t.mu.Unlock()
}

// RetryAt returns when requests may resume. The zero time means now.
func (t *Throttle) RetryAt() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.retryAt
}
