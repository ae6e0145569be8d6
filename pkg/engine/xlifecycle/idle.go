package xlifecycle

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/omeyang/xserve/pkg/observability/xlog"
)

// IdleHook 串行执行的空闲回调。
//
// 互斥区只负责让回调不与自身并发，与退出协调器的互斥区无关。
type IdleHook struct {
	fn     func(ctx context.Context) error
	logger xlog.Logger

	mu      sync.Mutex
	active  atomic.Int32
	peak    atomic.Int32
	runs    atomic.Uint64
	failure atomic.Uint64
}

// NewIdleHook 创建空闲回调。fn 为 nil 时 Run 不做任何事。
func NewIdleHook(fn func(ctx context.Context) error, logger xlog.Logger) *IdleHook {
	if logger == nil {
		logger = xlog.Discard()
	}
	return &IdleHook{fn: fn, logger: logger}
}

// ReopenHook 返回重新打开日志文件的回调。logger 不支持重新打开时返回 nil。
func ReopenHook(logger xlog.Logger) func(ctx context.Context) error {
	r, ok := logger.(xlog.Reopener)
	if !ok {
		return nil
	}
	return func(context.Context) error { return r.Reopen() }
}

// Run 执行一次回调。并发调用者依次执行，回调的 panic 被恢复并记录。
func (h *IdleHook) Run(ctx context.Context) {
	if h == nil || h.fn == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	n := h.active.Add(1)
	defer h.active.Add(-1)
	for {
		peak := h.peak.Load()
		if n <= peak || h.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	h.runs.Add(1)

	defer func() {
		if v := recover(); v != nil {
			h.failure.Add(1)
			h.logger.Error(ctx, "idle hook panicked", slog.Any("panic", v))
		}
	}()
	if err := h.fn(ctx); err != nil {
		h.failure.Add(1)
		h.logger.Warn(ctx, "idle hook failed", xlog.Err(err))
	}
}

// Runs 返回执行次数。
func (h *IdleHook) Runs() uint64 { return h.runs.Load() }

// Failures 返回失败（错误或 panic）次数。
func (h *IdleHook) Failures() uint64 { return h.failure.Load() }

// PeakConcurrency 返回观察到的最大并发执行数，串行执行时不超过 1。
func (h *IdleHook) PeakConcurrency() int32 { return h.peak.Load() }
