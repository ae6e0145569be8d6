package xlifecycle

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xserve/pkg/observability/xlog"
)

func TestIdleHook_Serialized(t *testing.T) {
	var inside, overlap atomic.Int32
	h := NewIdleHook(func(context.Context) error {
		if inside.Add(1) > 1 {
			overlap.Add(1)
		}
		time.Sleep(time.Millisecond)
		inside.Add(-1)
		return nil
	}, nil)

	const n = 32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			h.Run(context.Background())
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, uint64(n), h.Runs())
	assert.Equal(t, int32(1), h.PeakConcurrency())
	assert.Zero(t, overlap.Load())
}

func TestIdleHook_BackToBack(t *testing.T) {
	var calls atomic.Int32
	h := NewIdleHook(func(context.Context) error {
		calls.Add(1)
		return nil
	}, nil)

	h.Run(context.Background())
	h.Run(context.Background())
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, int32(1), h.PeakConcurrency())
}

func TestIdleHook_Failures(t *testing.T) {
	var n int
	h := NewIdleHook(func(context.Context) error {
		n++
		switch n {
		case 1:
			return errors.New("reopen failed")
		case 2:
			panic("hook exploded")
		}
		return nil
	}, nil)

	require.NotPanics(t, func() {
		for range 3 {
			h.Run(context.Background())
		}
	})
	assert.Equal(t, uint64(3), h.Runs())
	assert.Equal(t, uint64(2), h.Failures())
}

func TestIdleHook_Nil(t *testing.T) {
	var h *IdleHook
	assert.NotPanics(t, func() { h.Run(context.Background()) })

	empty := NewIdleHook(nil, nil)
	empty.Run(context.Background())
	assert.Zero(t, empty.Runs())
}

type reopenLogger struct {
	xlog.Logger
	reopened atomic.Int32
}

func (l *reopenLogger) Reopen() error {
	l.reopened.Add(1)
	return nil
}

func TestReopenHook(t *testing.T) {
	l := &reopenLogger{Logger: xlog.Discard()}
	fn := ReopenHook(l)
	require.NotNil(t, fn)
	require.NoError(t, fn(context.Background()))
	assert.Equal(t, int32(1), l.reopened.Load())

	type plain struct{ xlog.Logger }
	assert.Nil(t, ReopenHook(plain{xlog.Discard()}))
}
