package kv

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client), mr
}

func TestGetMissingKey(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestSetAndGet(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", "v", 0))

	val, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", val)
}

func TestSetExpiry(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", "v", time.Minute))

	mr.FastForward(2 * time.Minute)

	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestSetNX(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	ok, err := store.SetNX(ctx, "lock", "1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.SetNX(ctx, "lock", "2", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	val, err := store.Get(ctx, "lock")
	require.NoError(t, err)
	assert.Equal(t, "1", val)
}

func TestIncr(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	// Absent key counts from zero.
	n, err := store.Incr(ctx, "counter")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = store.Incr(ctx, "counter")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestDelete(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", "v", 0))
	require.NoError(t, store.Delete(ctx, "k"))

	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)

	// Deleting an absent key is not an error.
	assert.NoError(t, store.Delete(ctx, "k"))
}

func TestKeyNamespacing(t *testing.T) {
	assert.Equal(t, "communio:rotation:index", RotationCounterKey())
	assert.Equal(t, "communio:seeding:42", SeedingRecordKey(42))
	assert.Equal(t, "communio:seeding-lock:42", SeedingLockKey(42))
	assert.Equal(t, "communio:suggestions:42", SuggestionCacheKey(42))
	assert.Equal(t, "communio:broadcast:abc", BroadcastRecordKey("abc"))
}
