package memory

import (
	"sync"
	"time"

	"github.com/custodia-labs/provena/internal/adapters/driven/config/values"
	"github.com/custodia-labs/provena/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps settings in a map for tests and the memory backend.
// Save and Load do nothing.
type ConfigStore struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewConfigStore returns an empty store.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{values: make(map[string]any)}
}

func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.values[key]
	return val, ok
}

func (s *ConfigStore) lookup(key string) any {
	val, _ := s.Get(key)
	return val
}

func (s *ConfigStore) GetString(key string) string { return values.String(s.lookup(key)) }

func (s *ConfigStore) GetInt(key string) int { return values.Int(s.lookup(key)) }

func (s *ConfigStore) GetBool(key string) bool { return values.Bool(s.lookup(key)) }

func (s *ConfigStore) GetDuration(key string) time.Duration { return values.Duration(s.lookup(key)) }

func (s *ConfigStore) GetStringSlice(key string) []string { return values.Strings(s.lookup(key)) }

func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *ConfigStore) Save() error { return nil }

func (s *ConfigStore) Load() error { return nil }

// Path reports ":memory:" since nothing is on disk.
func (s *ConfigStore) Path() string { return ":memory:" }
