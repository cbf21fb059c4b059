package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/provena/internal/core/domain"
	"github.com/custodia-labs/provena/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.KeyValueStore = (*KeyValueStore)(nil)

// KeyValueStore is an in-memory implementation of driven.KeyValueStore.
// Values and sets share one key space; writing one kind replaces the other.
type KeyValueStore struct {
	mu     sync.RWMutex
	values map[string][]byte
	sets   map[string][][]byte
}

// NewKeyValueStore creates a new in-memory key-value store.
func NewKeyValueStore() *KeyValueStore {
	return &KeyValueStore{
		values: make(map[string][]byte),
		sets:   make(map[string][][]byte),
	}
}

// Put stores value under key.
func (s *KeyValueStore) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sets, key)
	s.values[key] = clone(value)
	return nil
}

// PutSet stores an ordered set under key.
func (s *KeyValueStore) PutSet(_ context.Context, key string, values [][]byte) error {
	copied := make([][]byte, len(values))
	for i, v := range values {
		copied[i] = clone(v)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	s.sets[key] = copied
	return nil
}

// Get returns the value under key.
func (s *KeyValueStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return clone(v), nil
}

// GetSet returns the set under key, empty when missing.
func (s *KeyValueStore) GetSet(_ context.Context, key string) ([][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set := s.sets[key]
	out := make([][]byte, len(set))
	for i, v := range set {
		out[i] = clone(v)
	}
	return out, nil
}

// Delete removes key.
func (s *KeyValueStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	delete(s.sets, key)
	return nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}
