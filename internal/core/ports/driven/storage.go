package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/provena/internal/core/domain"
)

// KeyValueStore persists opaque values and ordered value sets.
// Values are encoded by the caller.
type KeyValueStore interface {
	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error

	// PutSet stores an ordered sequence under key, replacing any previous set.
	PutSet(ctx context.Context, key string, values [][]byte) error

	// Get returns the value under key or domain.ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// GetSet returns the sequence under key in insertion order.
	// A missing key yields an empty sequence.
	GetSet(ctx context.Context, key string) ([][]byte, error)

	// Delete removes a value or set. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
}

// QuotaStore counts searches per user over a rolling window.
// Increment must be atomic per user and must not block other users.
type QuotaStore interface {
	// Consume adds cost to the user's counter if the result stays within limit.
	// A window that has elapsed is reset first. The returned record reflects
	// the state after the call; allowed is false when the limit would be exceeded,
	// in which case the counter is left unchanged.
	Consume(ctx context.Context, userID string, cost, limit int, window time.Duration) (rec domain.QuotaRecord, allowed bool, err error)

	// Get returns the user's current record. A user with no record yields a zero record.
	Get(ctx context.Context, userID string) (domain.QuotaRecord, error)
}

// ResultCache stores combined search results by input fingerprint.
type ResultCache interface {
	// Get returns the cached result or domain.ErrNotFound.
	Get(ctx context.Context, fingerprint string) (*domain.SearchResult, error)

	// PutIfAbsent stores result unless the fingerprint is already cached.
	// It reports whether the result was stored.
	PutIfAbsent(ctx context.Context, fingerprint string, result *domain.SearchResult) (bool, error)
}

// RateLimiter bounds how often a user may search.
type RateLimiter interface {
	// Allow reports whether a request from userID may proceed now.
	Allow(ctx context.Context, userID string) (bool, error)
}

// HistoryStore records accepted searches.
type HistoryStore interface {
	// Append adds an entry.
	Append(ctx context.Context, entry domain.HistoryEntry) error

	// List returns a user's entries, newest first, at most limit.
	List(ctx context.Context, userID string, limit int) ([]domain.HistoryEntry, error)
}
