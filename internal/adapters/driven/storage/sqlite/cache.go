package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/provena/internal/core/domain"
	"github.com/custodia-labs/provena/internal/core/ports/driven"
)

// resultCache implements driven.ResultCache.
type resultCache struct {
	store      *Store
	ttl        time.Duration
	maxEntries int
}

var _ driven.ResultCache = (*resultCache)(nil)

// Get returns a live cached result.
func (c *resultCache) Get(ctx context.Context, fingerprint string) (*domain.SearchResult, error) {
	var data []byte
	err := c.store.db.QueryRowContext(ctx,
		"SELECT data FROM result_cache WHERE fingerprint = ? AND expires_at > ?",
		fingerprint, c.store.now().UnixNano()).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting cached result: %w", err)
	}

	var result domain.SearchResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("unmarshaling cached result: %w", err)
	}
	return &result, nil
}

// PutIfAbsent stores result unless a live entry exists. An expired entry is replaced.
func (c *resultCache) PutIfAbsent(ctx context.Context, fingerprint string, result *domain.SearchResult) (bool, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return false, fmt.Errorf("marshalling result: %w", err)
	}
	now := c.store.now().UnixNano()

	res, err := c.store.db.ExecContext(ctx, `
		INSERT INTO result_cache (fingerprint, data, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(fingerprint) DO UPDATE SET
			data = excluded.data,
			expires_at = excluded.expires_at
		WHERE result_cache.expires_at <= ?
	`, fingerprint, data, now+c.ttl.Nanoseconds(), now)
	if err != nil {
		return false, fmt.Errorf("caching result: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("caching result: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	if err := c.prune(ctx, now); err != nil {
		return true, err
	}
	return true, nil
}

// prune drops expired rows, then the soonest-expiring rows above maxEntries.
func (c *resultCache) prune(ctx context.Context, now int64) error {
	if _, err := c.store.db.ExecContext(ctx,
		"DELETE FROM result_cache WHERE expires_at <= ?", now); err != nil {
		return fmt.Errorf("pruning expired results: %w", err)
	}
	_, err := c.store.db.ExecContext(ctx, `
		DELETE FROM result_cache WHERE fingerprint IN (
			SELECT fingerprint FROM result_cache
			ORDER BY expires_at ASC
			LIMIT MAX((SELECT COUNT(*) FROM result_cache) - ?, 0)
		)
	`, c.maxEntries)
	if err != nil {
		return fmt.Errorf("pruning cache: %w", err)
	}
	return nil
}
