package redisstore

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/provena/internal/core/domain"
)

// setupStore connects to a local Redis and isolates the test under a random prefix.
// Tests are skipped when Redis is not available.
func setupStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	base, err := NewStore(ctx, domain.StorageSettings{RedisAddr: "localhost:6379"})
	if err != nil {
		t.Skip("Skipping Redis integration test: redis not available")
	}
	store := base.WithPrefix("provena-test:" + uuid.NewString() + ":")

	t.Cleanup(func() {
		iter := store.client.Scan(ctx, 0, store.prefix+"*", 100).Iterator()
		for iter.Next(ctx) {
			store.client.Del(ctx, iter.Val())
		}
		_ = base.Close()
	})
	return store
}

func TestKVStore_Integration(t *testing.T) {
	kv := setupStore(t).KeyValueStore()
	ctx := context.Background()

	_, err := kv.Get(ctx, "thought:1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, kv.Put(ctx, "thought:1", []byte("primary")))
	got, err := kv.Get(ctx, "thought:1")
	require.NoError(t, err)
	assert.Equal(t, "primary", string(got))

	require.NoError(t, kv.PutSet(ctx, "thought:1:secondary", [][]byte{[]byte("b"), []byte("a")}))
	require.NoError(t, kv.PutSet(ctx, "thought:1:secondary", [][]byte{[]byte("c"), []byte("d")}))
	set, err := kv.GetSet(ctx, "thought:1:secondary")
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("c"), []byte("d")}, set)

	require.NoError(t, kv.Delete(ctx, "thought:1"))
	_, err = kv.Get(ctx, "thought:1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	empty, err := kv.GetSet(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestQuotaStore_Integration(t *testing.T) {
	quotas := setupStore(t).QuotaStore()
	ctx := context.Background()

	for i := 1; i <= 2; i++ {
		rec, allowed, err := quotas.Consume(ctx, "alice", 1, 2, time.Hour)
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Equal(t, i, rec.Count)
	}
	rec, allowed, err := quotas.Consume(ctx, "alice", 1, 2, time.Hour)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, 2, rec.Count)

	stored, err := quotas.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Count)
	assert.WithinDuration(t, time.Now(), stored.WindowStart, time.Minute)

	unknown, err := quotas.Get(ctx, "bob")
	require.NoError(t, err)
	assert.Zero(t, unknown.Count)
}

func TestQuotaStore_WindowReset_Integration(t *testing.T) {
	quotas := setupStore(t).QuotaStore()
	ctx := context.Background()

	_, allowed, err := quotas.Consume(ctx, "alice", 1, 1, 200*time.Millisecond)
	require.NoError(t, err)
	require.True(t, allowed)
	_, allowed, err = quotas.Consume(ctx, "alice", 1, 1, 200*time.Millisecond)
	require.NoError(t, err)
	require.False(t, allowed)

	time.Sleep(250 * time.Millisecond)
	_, allowed, err = quotas.Consume(ctx, "alice", 1, 1, 200*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestResultCache_Integration(t *testing.T) {
	cache := setupStore(t).ResultCache(domain.CacheSettings{TTL: time.Minute})
	ctx := context.Background()

	_, err := cache.Get(ctx, "fp")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	stored, err := cache.PutIfAbsent(ctx, "fp", &domain.SearchResult{ConfidenceScore: 0.3})
	require.NoError(t, err)
	assert.True(t, stored)

	stored, err = cache.PutIfAbsent(ctx, "fp", &domain.SearchResult{ConfidenceScore: 0.9})
	require.NoError(t, err)
	assert.False(t, stored)

	got, err := cache.Get(ctx, "fp")
	require.NoError(t, err)
	assert.InDelta(t, 0.3, got.ConfidenceScore, 1e-9)
}

func TestRateLimiter_Integration(t *testing.T) {
	// 1 token per second, burst 1.
	limiter := setupStore(t).RateLimiter(domain.RateLimitSettings{Requests: 60, Window: time.Minute, Burst: 1})
	ctx := context.Background()

	allowed, err := limiter.Allow(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = limiter.Allow(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, allowed)

	time.Sleep(1100 * time.Millisecond)
	allowed, err = limiter.Allow(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestHistoryStore_Integration(t *testing.T) {
	history := setupStore(t).HistoryStore()
	ctx := context.Background()

	for _, q := range []string{"first", "second"} {
		require.NoError(t, history.Append(ctx, domain.HistoryEntry{
			ID: q, UserID: "alice", Kind: domain.HistoryKindSearch, Query: q, CreatedAt: time.Now().UTC(),
		}))
	}

	entries, err := history.List(ctx, "alice", 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "second", entries[0].Query)

	all, err := history.List(ctx, "alice", 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestStore_Key(t *testing.T) {
	s := &Store{prefix: "p:"}
	assert.Equal(t, "p:quota:alice", s.key("quota", "alice"))
}
