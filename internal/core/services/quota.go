package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/provena/internal/core/domain"
	"github.com/custodia-labs/provena/internal/core/ports/driven"
	"github.com/custodia-labs/provena/internal/core/ports/driving"
	"github.com/custodia-labs/provena/internal/logger"
)

// Ensure QuotaService implements the interface.
var _ driving.QuotaService = (*QuotaService)(nil)

// QuotaService enforces a per-user search limit over a rolling window.
type QuotaService struct {
	store  driven.QuotaStore
	limit  int
	window time.Duration
}

// NewQuotaService creates a quota service. Non-positive settings fall back to defaults.
func NewQuotaService(store driven.QuotaStore, settings domain.QuotaSettings) *QuotaService {
	if settings.Limit <= 0 {
		settings.Limit = domain.DefaultQuotaLimit
	}
	if settings.Window <= 0 {
		settings.Window = domain.DefaultQuotaWindow
	}
	return &QuotaService{
		store:  store,
		limit:  settings.Limit,
		window: settings.Window,
	}
}

// Consume charges cost credits to userID or fails with domain.ErrQuotaExceeded.
func (q *QuotaService) Consume(ctx context.Context, userID string, cost int) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	if cost <= 0 {
		cost = 1
	}

	rec, allowed, err := q.store.Consume(ctx, userID, cost, q.limit, q.window)
	if err != nil {
		return fmt.Errorf("quota: %w", err)
	}
	if !allowed {
		logger.Info("Quota exceeded for %s: %d/%d since %s",
			userID, rec.Count, q.limit, rec.WindowStart.Format(time.RFC3339))
		return domain.ErrQuotaExceeded
	}
	logger.Debug("Quota for %s: %d/%d", userID, rec.Count, q.limit)
	return nil
}

// Status returns the user's record and remaining searches.
func (q *QuotaService) Status(ctx context.Context, userID string) (domain.QuotaRecord, int, error) {
	rec, err := q.store.Get(ctx, userID)
	if err != nil {
		return domain.QuotaRecord{}, 0, fmt.Errorf("quota: %w", err)
	}
	if rec.WindowStart.IsZero() || rec.Expired(time.Now(), q.window) {
		return domain.QuotaRecord{UserID: userID}, q.limit, nil
	}
	return rec, rec.Remaining(q.limit), nil
}

// Limit returns the configured limit per window.
func (q *QuotaService) Limit() int {
	return q.limit
}
