package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/provena/internal/core/domain"
	"github.com/custodia-labs/provena/internal/core/ports/driven"
)

// historyStore implements driven.HistoryStore.
type historyStore struct {
	store *Store
}

var _ driven.HistoryStore = (*historyStore)(nil)

// Append records an entry.
func (s *historyStore) Append(ctx context.Context, entry domain.HistoryEntry) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO history (id, user_id, kind, query, result_ref, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.UserID, string(entry.Kind), entry.Query, entry.ResultRef, entry.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("saving history entry: %w", err)
	}
	return nil
}

// List returns the newest entries first.
func (s *historyStore) List(ctx context.Context, userID string, limit int) ([]domain.HistoryEntry, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, user_id, kind, query, result_ref, created_at
		FROM history WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []domain.HistoryEntry //nolint:prealloc // size unknown from query
	for rows.Next() {
		var (
			e       domain.HistoryEntry
			kind    string
			created int64
		)
		if err := rows.Scan(&e.ID, &e.UserID, &kind, &e.Query, &e.ResultRef, &created); err != nil {
			return nil, fmt.Errorf("scanning history entry: %w", err)
		}
		e.Kind = domain.HistoryKind(kind)
		e.CreatedAt = time.Unix(0, created).UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating history: %w", err)
	}
	return entries, nil
}
