package memory

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/provena/internal/core/domain"
	"github.com/custodia-labs/provena/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.QuotaStore = (*QuotaStore)(nil)

// QuotaStore keeps per-user quota counters in memory.
// Each user has their own lock so a busy user never blocks another.
type QuotaStore struct {
	mu    sync.Mutex
	users map[string]*userQuota
	now   func() time.Time
}

type userQuota struct {
	mu  sync.Mutex
	rec domain.QuotaRecord
}

// NewQuotaStore creates a new in-memory quota store.
func NewQuotaStore() *QuotaStore {
	return &QuotaStore{
		users: make(map[string]*userQuota),
		now:   time.Now,
	}
}

func (s *QuotaStore) entry(userID string) *userQuota {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		u = &userQuota{rec: domain.QuotaRecord{UserID: userID}}
		s.users[userID] = u
	}
	return u
}

// Consume adds cost to the user's counter when it fits within limit.
func (s *QuotaStore) Consume(
	_ context.Context, userID string, cost, limit int, window time.Duration,
) (domain.QuotaRecord, bool, error) {
	u := s.entry(userID)
	u.mu.Lock()
	defer u.mu.Unlock()

	now := s.now()
	if u.rec.WindowStart.IsZero() || u.rec.Expired(now, window) {
		u.rec.Count = 0
		u.rec.WindowStart = now
	}
	if u.rec.Count+cost > limit {
		return u.rec, false, nil
	}
	u.rec.Count += cost
	return u.rec, true, nil
}

// Get returns the user's current record.
func (s *QuotaStore) Get(_ context.Context, userID string) (domain.QuotaRecord, error) {
	s.mu.Lock()
	u, ok := s.users[userID]
	s.mu.Unlock()
	if !ok {
		return domain.QuotaRecord{UserID: userID}, nil
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.rec, nil
}
