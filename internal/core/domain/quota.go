package domain

import "time"

// QuotaRecord is a per-user search counter over a rolling window.
// It is created on a user's first search and reset when the window elapses.
type QuotaRecord struct {
	UserID      string    `json:"user_id"`
	Count       int       `json:"count"`
	WindowStart time.Time `json:"window_start"`
}

// Expired reports whether the record's window has elapsed at now.
func (q QuotaRecord) Expired(now time.Time, window time.Duration) bool {
	return !now.Before(q.WindowStart.Add(window))
}

// Remaining returns how many searches are left under limit.
func (q QuotaRecord) Remaining(limit int) int {
	if r := limit - q.Count; r > 0 {
		return r
	}
	return 0
}

// HistoryKind identifies which entry point produced a history entry.
type HistoryKind string

// Available history kinds.
const (
	HistoryKindTrace  HistoryKind = "trace"
	HistoryKindSearch HistoryKind = "search"
)

// HistoryEntry records one accepted search for a user.
type HistoryEntry struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id"`
	Kind      HistoryKind `json:"kind"`
	Query     string      `json:"query"`
	ResultRef string      `json:"result_ref,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}
