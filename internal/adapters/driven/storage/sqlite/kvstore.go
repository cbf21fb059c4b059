package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/provena/internal/core/domain"
	"github.com/custodia-labs/provena/internal/core/ports/driven"
)

// kvStore implements driven.KeyValueStore.
type kvStore struct {
	store *Store
}

var _ driven.KeyValueStore = (*kvStore)(nil)

// Put stores or replaces a value.
func (s *kvStore) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	return nil
}

// PutSet replaces the set under key in one transaction.
func (s *kvStore) PutSet(ctx context.Context, key string, values [][]byte) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM kv_sets WHERE key = ?", key); err != nil {
		return fmt.Errorf("clearing set %s: %w", key, err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO kv_sets (key, position, value) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, v := range values {
		if _, err := stmt.ExecContext(ctx, key, i, v); err != nil {
			return fmt.Errorf("saving set %s[%d]: %w", key, i, err)
		}
	}

	return tx.Commit()
}

// Get retrieves a value by key.
func (s *kvStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.store.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", key, err)
	}
	return value, nil
}

// GetSet returns the set under key in position order.
func (s *kvStore) GetSet(ctx context.Context, key string) ([][]byte, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT value FROM kv_sets WHERE key = ? ORDER BY position", key)
	if err != nil {
		return nil, fmt.Errorf("querying set %s: %w", key, err)
	}
	defer rows.Close()

	values := [][]byte{}
	for rows.Next() {
		var v []byte
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scanning set %s: %w", key, err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating set %s: %w", key, err)
	}
	return values, nil
}

// Delete removes a value and any set under key.
func (s *kvStore) Delete(ctx context.Context, key string) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM kv_sets WHERE key = ?", key); err != nil {
		return fmt.Errorf("deleting set %s: %w", key, err)
	}
	return tx.Commit()
}
