package xcache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T, opts ...RedisOption) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	store, err := NewRedis(client, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestNewRedis_NilClient(t *testing.T) {
	_, err := NewRedis(nil)
	assert.ErrorIs(t, err, ErrNilClient)
}

func TestRedisStore_PutGet(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedis(t, WithPrefix("t:"), WithTTL(time.Minute))

	_, ok, err := store.Get(ctx, "fp")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Put(ctx, "fp", []byte("body")))
	v, ok, err := store.Get(ctx, "fp")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "body", string(v))

	assert.True(t, mr.Exists("t:resp:fp"))
	assert.Equal(t, time.Minute, mr.TTL("t:resp:fp"))

	mr.FastForward(2 * time.Minute)
	_, ok, err = store.Get(ctx, "fp")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_Pending(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedis(t, WithRedisPendingTTL(time.Hour))

	require.NoError(t, store.PutPendingRequest(ctx, "c-1", []byte(`{"id":"c-1"}`)))
	assert.True(t, mr.Exists("xserve:pending:c-1"))
	assert.Equal(t, time.Hour, mr.TTL("xserve:pending:c-1"))

	v, ok, err := store.GetPendingRequest(ctx, "c-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"id":"c-1"}`, string(v))

	_, ok, err = store.Get(ctx, "c-1")
	require.NoError(t, err)
	assert.False(t, ok, "pending and response keyspaces are separate")
}

func TestRedisStore_EmptyKey(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestRedis(t)

	_, _, err := store.Get(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyKey)
	assert.ErrorIs(t, store.Put(ctx, "", nil), ErrEmptyKey)
	_, _, err = store.GetPendingRequest(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyKey)
	assert.ErrorIs(t, store.PutPendingRequest(ctx, "", nil), ErrEmptyKey)
}

func TestRedisStore_BreakerOpensOnFailures(t *testing.T) {
	ctx := context.Background()
	var transitions []gobreaker.State
	store, mr := newTestRedis(t,
		WithBreaker(2, time.Hour),
		WithBreakerStateChange(func(_ string, _, to gobreaker.State) {
			transitions = append(transitions, to)
		}),
	)

	mr.SetError("backend down")
	_, _, err := store.Get(ctx, "k")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnavailable)
	assert.Error(t, store.Put(ctx, "k", []byte("v")))

	assert.Equal(t, gobreaker.StateOpen, store.BreakerState())
	mr.SetError("")

	_, _, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, []gobreaker.State{gobreaker.StateOpen}, transitions)
}

func TestRedisStore_MissDoesNotTrip(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestRedis(t, WithBreaker(1, time.Hour))

	for range 5 {
		_, ok, err := store.Get(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, ok)
	}
	assert.Equal(t, gobreaker.StateClosed, store.BreakerState())
}

func TestRedisStore_Closed(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	store, err := NewRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	require.NoError(t, err)
	assert.NotNil(t, store.Client())

	require.NoError(t, store.Close())
	assert.ErrorIs(t, store.Close(), ErrClosed)
	_, _, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, store.Put(ctx, "k", nil), ErrClosed)
}
