package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/provena/internal/core/domain"
	"github.com/custodia-labs/provena/internal/core/ports/driven"
)

// quotaStore implements driven.QuotaStore.
type quotaStore struct {
	store *Store
}

var _ driven.QuotaStore = (*quotaStore)(nil)

// consumeQuota charges cost in one statement. An expired window restarts
// at the new start; the WHERE clause rejects the update when the charge
// would pass the limit, in which case nothing is returned.
//
// Parameters: user, cost, now, expiry cutoff (now - window), limit.
const consumeQuota = `
	INSERT INTO quotas (user_id, count, window_start) VALUES (?1, ?2, ?3)
	ON CONFLICT(user_id) DO UPDATE SET
		count = CASE WHEN quotas.window_start <= ?4 THEN ?2 ELSE quotas.count + ?2 END,
		window_start = CASE WHEN quotas.window_start <= ?4 THEN ?3 ELSE quotas.window_start END
	WHERE (CASE WHEN quotas.window_start <= ?4 THEN 0 ELSE quotas.count END) + ?2 <= ?5
	RETURNING count, window_start`

// Consume adds cost to the user's counter when it fits within limit.
// The check and the increment are one SQL statement, so users never wait
// on each other beyond SQLite's own write lock.
func (s *quotaStore) Consume(
	ctx context.Context, userID string, cost, limit int, window time.Duration,
) (domain.QuotaRecord, bool, error) {
	if cost > limit {
		rec, err := getQuota(ctx, s.store.db, userID)
		return rec, false, err
	}

	now := s.store.now()
	rec := domain.QuotaRecord{UserID: userID}
	var start int64
	err := s.store.db.QueryRowContext(ctx, consumeQuota,
		userID, cost, now.UnixNano(), now.Add(-window).UnixNano(), limit,
	).Scan(&rec.Count, &start)
	if errors.Is(err, sql.ErrNoRows) {
		rec, err = getQuota(ctx, s.store.db, userID)
		return rec, false, err
	}
	if err != nil {
		return domain.QuotaRecord{}, false, fmt.Errorf("consuming quota: %w", err)
	}
	rec.WindowStart = time.Unix(0, start)
	return rec, true, nil
}

// Get returns the user's current record.
func (s *quotaStore) Get(ctx context.Context, userID string) (domain.QuotaRecord, error) {
	return getQuota(ctx, s.store.db, userID)
}

func getQuota(ctx context.Context, q *sql.DB, userID string) (domain.QuotaRecord, error) {
	rec := domain.QuotaRecord{UserID: userID}
	var start int64
	err := q.QueryRowContext(ctx,
		"SELECT count, window_start FROM quotas WHERE user_id = ?", userID).Scan(&rec.Count, &start)
	if errors.Is(err, sql.ErrNoRows) {
		return rec, nil
	}
	if err != nil {
		return domain.QuotaRecord{}, fmt.Errorf("getting quota: %w", err)
	}
	rec.WindowStart = time.Unix(0, start)
	return rec, nil
}
