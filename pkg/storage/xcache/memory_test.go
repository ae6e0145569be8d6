package xcache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMemory(t *testing.T, opts ...MemoryOption) *MemoryStore {
	t.Helper()
	m, err := NewMemory(append([]MemoryOption{WithMemoryNumCounters(1e4)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestMemoryStore_PutGet(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory(t)

	_, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Put(ctx, "k", []byte("cached")))
	v, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "cached", string(v))

	st := m.Stats()
	assert.Equal(t, uint64(1), st.Hits)
	assert.Equal(t, uint64(1), st.Misses)
}

func TestMemoryStore_TTL(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory(t, WithMemoryTTL(50*time.Millisecond))

	require.NoError(t, m.Put(ctx, "k", []byte("v")))
	_, ok, _ := m.Get(ctx, "k")
	assert.True(t, ok)

	assert.Eventually(t, func() bool {
		_, ok, _ := m.Get(ctx, "k")
		return !ok
	}, 2*time.Second, 20*time.Millisecond)
}

func TestMemoryStore_EmptyKey(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory(t)

	_, _, err := m.Get(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyKey)
	assert.ErrorIs(t, m.Put(ctx, "", nil), ErrEmptyKey)
	_, _, err = m.GetPendingRequest(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyKey)
	assert.ErrorIs(t, m.PutPendingRequest(ctx, "", nil), ErrEmptyKey)
}

func TestMemoryStore_Pending(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory(t, WithPendingSize(2))

	require.NoError(t, m.PutPendingRequest(ctx, "a", []byte("A")))
	require.NoError(t, m.PutPendingRequest(ctx, "b", []byte("B")))
	require.NoError(t, m.PutPendingRequest(ctx, "c", []byte("C")))

	_, ok, err := m.GetPendingRequest(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok, "oldest entry evicted")

	v, ok, err := m.GetPendingRequest(ctx, "c")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "C", string(v))
	assert.Equal(t, 2, m.Stats().Pending)
}

func TestMemoryStore_PendingTTL(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory(t, WithPendingTTL(time.Minute))

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	require.NoError(t, m.PutPendingRequest(ctx, "id", []byte("snap")))

	_, ok, _ := m.GetPendingRequest(ctx, "id")
	assert.True(t, ok)

	now = now.Add(time.Minute)
	_, ok, _ = m.GetPendingRequest(ctx, "id")
	assert.False(t, ok)
	assert.Equal(t, 0, m.Stats().Pending)
}

func TestMemoryStore_Closed(t *testing.T) {
	ctx := context.Background()
	m, err := NewMemory(WithMemoryNumCounters(1e4), WithMemoryMaxCost(1))
	require.NoError(t, err)
	require.NoError(t, m.Close())
	assert.ErrorIs(t, m.Close(), ErrClosed)

	_, _, err = m.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, m.Put(ctx, "k", nil), ErrClosed)
	_, _, err = m.GetPendingRequest(ctx, "k")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, m.PutPendingRequest(ctx, "k", nil), ErrClosed)
	assert.Equal(t, MemoryStats{}, m.Stats())
}

func TestMemoryStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory(t)

	done := make(chan struct{})
	for w := range 8 {
		go func() {
			defer func() { done <- struct{}{} }()
			for i := range 50 {
				key := fmt.Sprintf("k-%d-%d", w, i)
				_ = m.Put(ctx, key, []byte(key))
				_, _, _ = m.Get(ctx, key)
				_ = m.PutPendingRequest(ctx, key, []byte(key))
			}
		}()
	}
	for range 8 {
		<-done
	}
}
