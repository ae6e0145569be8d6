package xtee

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/omeyang/xserve/pkg/engine/xreq"
	"github.com/omeyang/xserve/pkg/observability/xlog"
	"github.com/omeyang/xserve/pkg/storage/xcache"
)

// DefaultMaxCapture 单个响应或请求快照的默认捕获上限（1MiB）。
const DefaultMaxCapture = 1 << 20

// Decision 请求结束时对捕获的处置。
type Decision int

const (
	// Discarded 捕获被丢弃。
	Discarded Decision = iota
	// Stored 响应写入缓存。
	Stored
	// Pending 请求快照写入待完成存储，响应未缓存。
	Pending
)

func (d Decision) String() string {
	switch d {
	case Stored:
		return "stored"
	case Pending:
		return "pending"
	default:
		return "discarded"
	}
}

// Option 配置 Adapter。
type Option func(*Adapter)

// WithMaxCapture 设置捕获上限，<= 0 时沿用默认值。
func WithMaxCapture(n int) Option {
	return func(a *Adapter) {
		if n > 0 {
			a.maxCapture = n
		}
	}
}

// WithLogger 设置日志记录器。nil 被忽略。
func WithLogger(logger xlog.Logger) Option {
	return func(a *Adapter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// Adapter 缓存适配器，并发安全（状态只在 Capture/Recorder 中，属于单个请求）。
type Adapter struct {
	store      xcache.Store
	maxCapture int
	logger     xlog.Logger
}

// New 创建适配器。
func New(store xcache.Store, opts ...Option) (*Adapter, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	a := &Adapter{store: store, maxCapture: DefaultMaxCapture, logger: xlog.Discard()}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	a.logger = a.logger.With(xlog.Component("xtee"))
	return a, nil
}

// MaxCapture 返回捕获上限。
func (a *Adapter) MaxCapture() int { return a.maxCapture }

// Tee 创建写向 w 的输出复制器。
func (a *Adapter) Tee(w io.Writer) *Capture { return NewCapture(w, a.maxCapture) }

// Record 创建请求输入记录器。
func (a *Adapter) Record(r io.Reader) *Recorder { return NewRecorder(r, a.maxCapture) }

// TryServe 查找之前就绪的结果。存储错误按未命中处理。
func (a *Adapter) TryServe(ctx context.Context, fingerprint string) ([]byte, bool) {
	if fingerprint == "" {
		return nil, false
	}
	data, ok, err := a.store.Get(ctx, fingerprint)
	if err != nil {
		a.logger.Warn(ctx, "cache lookup failed", slog.String("fingerprint", fingerprint), xlog.Err(err))
		return nil, false
	}
	return data, ok
}

// Store 保存就绪的响应。
func (a *Adapter) Store(ctx context.Context, fingerprint string, data []byte) error {
	if fingerprint == "" {
		return ErrEmptyFingerprint
	}
	if err := a.store.Put(ctx, fingerprint, data); err != nil {
		return fmt.Errorf("xtee: store %q: %w", fingerprint, err)
	}
	return nil
}

// StorePending 保存延后完成的请求快照。
func (a *Adapter) StorePending(ctx context.Context, correlationID string, snap *xreq.Snapshot) error {
	if correlationID == "" {
		return ErrEmptyCorrelationID
	}
	if snap == nil {
		return ErrNilSnapshot
	}
	data, err := snap.Encode()
	if err != nil {
		return fmt.Errorf("xtee: encode snapshot: %w", err)
	}
	if err := a.store.PutPendingRequest(ctx, correlationID, data); err != nil {
		return fmt.Errorf("xtee: store pending %q: %w", correlationID, err)
	}
	return nil
}

// LoadPending 取回之前保存的请求快照。未找到时返回 (nil, false, nil)。
func (a *Adapter) LoadPending(ctx context.Context, correlationID string) (*xreq.Snapshot, bool, error) {
	if correlationID == "" {
		return nil, false, ErrEmptyCorrelationID
	}
	data, ok, err := a.store.GetPendingRequest(ctx, correlationID)
	if err != nil || !ok {
		return nil, false, err
	}
	snap, err := xreq.DecodeSnapshot(data)
	if err != nil {
		return nil, false, err
	}
	return snap, true, nil
}

// Outcome 处理器结束后交给 Finish 的信息。
type Outcome struct {
	// Fingerprint 响应缓存键，为空表示请求不可缓存
	Fingerprint string
	// Ready 处理器表示结果已就绪
	Ready bool
	// Succeeded 请求以成功结束
	Succeeded bool
	// CorrelationID 延后请求的关联 ID
	CorrelationID string
	// Snapshot 延后请求的快照构造函数，只在需要时调用
	Snapshot func() *xreq.Snapshot
}

// Finish 决定捕获的去向并执行。存储失败记录日志后视为丢弃。
//
// 请求未成功时一律丢弃。结果延后时保存请求快照，绝不写响应缓存。
func (a *Adapter) Finish(ctx context.Context, c *Capture, o Outcome) Decision {
	if !o.Succeeded {
		discard(c)
		return Discarded
	}
	if !o.Ready {
		discard(c)
		if o.Snapshot == nil {
			return Discarded
		}
		id := o.CorrelationID
		if err := a.StorePending(ctx, id, o.Snapshot()); err != nil {
			a.logger.Warn(ctx, "store pending request failed", slog.String("correlation_id", id), xlog.Err(err))
			return Discarded
		}
		return Pending
	}
	if c == nil || o.Fingerprint == "" || c.Overflowed() {
		discard(c)
		return Discarded
	}
	if err := a.Store(ctx, o.Fingerprint, bytes.Clone(c.Bytes())); err != nil {
		a.logger.Warn(ctx, "store response failed", slog.String("fingerprint", o.Fingerprint), xlog.Err(err))
		return Discarded
	}
	return Stored
}

func discard(c *Capture) {
	if c != nil {
		c.Discard()
	}
}
