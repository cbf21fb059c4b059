package sqlite

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/provena/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })

	return store
}

func TestNewStore_ErrorHandling(t *testing.T) {
	_, err := NewStore("/invalid\x00path")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "creating data directory")
}

func TestNewStore_Success(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(filepath.Join(dir, "nested", "data"))
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, "nested", "data", DatabaseFile), store.Path())
	assert.FileExists(t, store.Path())
	assert.NoError(t, store.db.Ping())
}

func TestNewStore_Migrations(t *testing.T) {
	store := setupTestStore(t)

	var version int
	require.NoError(t, store.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 1, version)

	for _, table := range []string{"kv", "kv_sets", "quotas", "result_cache", "history"} {
		var exists int
		err := store.db.QueryRow(
			"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&exists)
		require.NoError(t, err)
		assert.Equal(t, 1, exists, "table %s should exist", table)
	}
}

func TestNewStore_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.KeyValueStore().Put(ctx, "thought:1", []byte("x")))
	require.NoError(t, first.Close())

	second, err := NewStore(dir)
	require.NoError(t, err)
	defer second.Close()

	got, err := second.KeyValueStore().Get(ctx, "thought:1")
	require.NoError(t, err)
	assert.Equal(t, "x", string(got))
}

// ==================== KeyValueStore Tests ====================

func TestKVStore_PutGetDelete(t *testing.T) {
	kv := setupTestStore(t).KeyValueStore()
	ctx := context.Background()

	_, err := kv.Get(ctx, "thought:1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, kv.Put(ctx, "thought:1", []byte(`{"v":1}`)))
	require.NoError(t, kv.Put(ctx, "thought:1", []byte(`{"v":2}`)))

	got, err := kv.Get(ctx, "thought:1")
	require.NoError(t, err)
	assert.Equal(t, `{"v":2}`, string(got))

	require.NoError(t, kv.Delete(ctx, "thought:1"))
	_, err = kv.Get(ctx, "thought:1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestKVStore_Sets(t *testing.T) {
	kv := setupTestStore(t).KeyValueStore()
	ctx := context.Background()

	empty, err := kv.GetSet(ctx, "thought:1:secondary")
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, kv.PutSet(ctx, "thought:1:secondary", [][]byte{[]byte("c"), []byte("a"), []byte("b")}))
	set, err := kv.GetSet(ctx, "thought:1:secondary")
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("c"), []byte("a"), []byte("b")}, set)

	require.NoError(t, kv.PutSet(ctx, "thought:1:secondary", nil))
	set, err = kv.GetSet(ctx, "thought:1:secondary")
	require.NoError(t, err)
	assert.Empty(t, set)

	require.NoError(t, kv.PutSet(ctx, "thought:2:secondary", [][]byte{[]byte("z")}))
	require.NoError(t, kv.Delete(ctx, "thought:2:secondary"))
	set, err = kv.GetSet(ctx, "thought:2:secondary")
	require.NoError(t, err)
	assert.Empty(t, set)
}

// ==================== QuotaStore Tests ====================

func TestQuotaStore_Consume(t *testing.T) {
	store := setupTestStore(t)
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	quotas := store.QuotaStore()
	ctx := context.Background()

	rec, err := quotas.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Zero(t, rec.Count)

	for i := 1; i <= 2; i++ {
		rec, allowed, err := quotas.Consume(ctx, "alice", 1, 2, 24*time.Hour)
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Equal(t, i, rec.Count)
	}

	rec, allowed, err := quotas.Consume(ctx, "alice", 1, 2, 24*time.Hour)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, 2, rec.Count)

	now = now.Add(24 * time.Hour)
	rec, allowed, err = quotas.Consume(ctx, "alice", 1, 2, 24*time.Hour)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 1, rec.Count)
	assert.True(t, rec.WindowStart.Equal(now))

	stored, err := quotas.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Count)
	assert.True(t, stored.WindowStart.Equal(now))
}

func TestQuotaStore_ConcurrentConsume(t *testing.T) {
	quotas := setupTestStore(t).QuotaStore()
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted int
	)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, allowed, err := quotas.Consume(ctx, "alice", 1, 5, time.Hour)
			if err == nil && allowed {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, granted)
}

func TestQuotaStore_ConsumeWeightedAcrossUsers(t *testing.T) {
	quotas := setupTestStore(t).QuotaStore()
	ctx := context.Background()

	_, allowed, err := quotas.Consume(ctx, "alice", 3, 4, time.Hour)
	require.NoError(t, err)
	assert.True(t, allowed)

	rec, allowed, err := quotas.Consume(ctx, "alice", 3, 4, time.Hour)
	require.NoError(t, err)
	assert.False(t, allowed, "3 more would pass the limit")
	assert.Equal(t, 3, rec.Count)

	_, allowed, err = quotas.Consume(ctx, "bob", 5, 4, time.Hour)
	require.NoError(t, err)
	assert.False(t, allowed, "a charge above the limit never fits")

	var wg sync.WaitGroup
	granted := make(map[string]int)
	var mu sync.Mutex
	for _, user := range []string{"carol", "dave", "erin"} {
		for range 6 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, ok, err := quotas.Consume(ctx, user, 1, 4, time.Hour)
				if err == nil && ok {
					mu.Lock()
					granted[user]++
					mu.Unlock()
				}
			}()
		}
	}
	wg.Wait()

	assert.Equal(t, map[string]int{"carol": 4, "dave": 4, "erin": 4}, granted)
}

// ==================== ResultCache Tests ====================

func TestResultCache_PutIfAbsent(t *testing.T) {
	cache := setupTestStore(t).ResultCache(domain.CacheSettings{})
	ctx := context.Background()

	_, err := cache.Get(ctx, "fp")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	stored, err := cache.PutIfAbsent(ctx, "fp", &domain.SearchResult{ConfidenceScore: 0.4, Platforms: []string{"web"}})
	require.NoError(t, err)
	assert.True(t, stored)

	stored, err = cache.PutIfAbsent(ctx, "fp", &domain.SearchResult{ConfidenceScore: 0.9})
	require.NoError(t, err)
	assert.False(t, stored)

	got, err := cache.Get(ctx, "fp")
	require.NoError(t, err)
	assert.InDelta(t, 0.4, got.ConfidenceScore, 1e-9)
	assert.Equal(t, []string{"web"}, got.Platforms)
}

func TestResultCache_ExpiryAndEviction(t *testing.T) {
	store := setupTestStore(t)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	cache := store.ResultCache(domain.CacheSettings{TTL: time.Minute, MaxEntries: 2})
	ctx := context.Background()

	for _, fp := range []string{"a", "b", "c"} {
		_, err := cache.PutIfAbsent(ctx, fp, &domain.SearchResult{})
		require.NoError(t, err)
		now = now.Add(time.Second)
	}

	_, err := cache.Get(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrNotFound, "oldest entry evicted")
	_, err = cache.Get(ctx, "c")
	assert.NoError(t, err)

	now = now.Add(time.Minute)
	_, err = cache.Get(ctx, "c")
	assert.ErrorIs(t, err, domain.ErrNotFound, "expired")

	stored, err := cache.PutIfAbsent(ctx, "c", &domain.SearchResult{ConfidenceScore: 1})
	require.NoError(t, err)
	assert.True(t, stored, "expired entry is replaced")
}

// ==================== HistoryStore Tests ====================

func TestHistoryStore_AppendList(t *testing.T) {
	history := setupTestStore(t).HistoryStore()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, q := range []string{"first", "second", "third"} {
		require.NoError(t, history.Append(ctx, domain.HistoryEntry{
			ID:        q,
			UserID:    "alice",
			Kind:      domain.HistoryKindTrace,
			Query:     q,
			ResultRef: "ref-" + q,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	entries, err := history.List(ctx, "alice", 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "third", entries[0].Query)
	assert.Equal(t, domain.HistoryKindTrace, entries[0].Kind)
	assert.Equal(t, "ref-third", entries[0].ResultRef)
	assert.Equal(t, base.Add(2*time.Minute), entries[0].CreatedAt)

	all, err := history.List(ctx, "alice", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := history.List(ctx, "bob", 5)
	require.NoError(t, err)
	assert.Empty(t, none)
}
