package xdispatch

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/omeyang/xserve/pkg/context/xctx"
	"github.com/omeyang/xserve/pkg/engine/xexit"
	"github.com/omeyang/xserve/pkg/engine/xreq"
	"github.com/omeyang/xserve/pkg/observability/xlog"
	"github.com/omeyang/xserve/pkg/util/xpool"
)

// Processor 处理一个请求。Process 返回后连接即被关闭。
type Processor interface {
	Process(ctx context.Context, raw *xreq.RawRequest)
}

// ProcessorFunc 将函数适配为 Processor。
type ProcessorFunc func(ctx context.Context, raw *xreq.RawRequest)

// Process 实现 Processor。
func (f ProcessorFunc) Process(ctx context.Context, raw *xreq.RawRequest) { f(ctx, raw) }

var _ xexit.Stopper = (*Manager)(nil)

// Manager 分发管理器。
type Manager struct {
	proc   Processor
	opts   options
	logger xlog.Logger

	mu      sync.Mutex
	ln      net.Listener
	addr    Address
	pool    *xpool.Pool[net.Conn]
	started bool

	// stopCtx 只用于打断接受循环与入队等待，不传给 Processor，
	// 因此 Stop 之后已开始处理的请求仍能正常完成。
	stopCtx    context.Context
	cancel     context.CancelFunc
	stopping   atomic.Bool
	acceptDone chan struct{}
	acceptErr  error
}

// New 创建分发管理器。
func New(proc Processor, opts ...Option) (*Manager, error) {
	if proc == nil {
		return nil, ErrNilProcessor
	}
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		proc:    proc,
		opts:    o,
		logger:  o.logger.With(xlog.Component(o.name)),
		stopCtx: ctx,
		cancel:  cancel,
	}, nil
}

// Listen 绑定监听地址，格式见 ParseAddress。
func (m *Manager) Listen(address string) error {
	addr, err := ParseAddress(address)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ln != nil {
		return ErrAlreadyListening
	}
	ln, err := listen(addr)
	if err != nil {
		return fmt.Errorf("xdispatch: listen %s: %w", addr, err)
	}
	m.ln = ln
	m.addr = addr
	return nil
}

// UseListener 使用调用方已创建的监听器。
func (m *Manager) UseListener(ln net.Listener) error {
	if ln == nil {
		return fmt.Errorf("%w: nil listener", ErrInvalidAddress)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ln != nil {
		return ErrAlreadyListening
	}
	m.ln = ln
	m.addr = Address{Network: ln.Addr().Network(), Target: ln.Addr().String()}
	return nil
}

// Addr 返回实际监听地址，未监听时返回 nil。
func (m *Manager) Addr() net.Addr {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ln == nil {
		return nil
	}
	return m.ln.Addr()
}

// Start 启动 worker pool 与接受循环。
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ln == nil {
		return ErrNotListening
	}
	if m.started {
		return ErrAlreadyStarted
	}
	pool, err := xpool.New(m.opts.workers, m.opts.queueSize, m.serveConn,
		xpool.WithLogger(xlog.Slog(m.logger)), xpool.WithName(m.opts.name))
	if err != nil {
		return fmt.Errorf("xdispatch: start workers: %w", err)
	}
	m.pool = pool
	m.started = true
	m.acceptDone = make(chan struct{})
	go m.acceptLoop(m.ln, pool)

	m.logger.Info(context.Background(), "dispatcher started",
		slog.String("addr", m.ln.Addr().String()), slog.Int("workers", m.opts.workers))
	return nil
}

// Join 阻塞直到接受循环退出且所有已接受的连接处理完毕。
//
// 正常停止返回 nil；监听器在 Stop 之外失效时返回接受错误。
func (m *Manager) Join() error {
	m.mu.Lock()
	started, done, pool := m.started, m.acceptDone, m.pool
	m.mu.Unlock()
	if !started {
		return ErrNotStarted
	}
	<-done
	if err := pool.Close(); err != nil {
		return fmt.Errorf("xdispatch: join workers: %w", err)
	}
	m.logger.Info(context.Background(), "dispatcher joined")
	return m.acceptErr
}

// Stop 停止接受新连接。非阻塞、幂等，可以在 worker 内调用。
func (m *Manager) Stop() {
	if !m.stopping.CompareAndSwap(false, true) {
		return
	}
	m.cancel()
	m.mu.Lock()
	ln := m.ln
	m.mu.Unlock()
	if ln != nil {
		if err := ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			m.logger.Warn(context.Background(), "close listener failed", xlog.Err(err))
		}
	}
	m.logger.Info(context.Background(), "dispatcher stopping")
}

// Stopping 报告 Stop 是否已被调用。
func (m *Manager) Stopping() bool {
	return m.stopping.Load()
}

func (m *Manager) acceptLoop(ln net.Listener, pool *xpool.Pool[net.Conn]) {
	defer close(m.acceptDone)

	backoff := newAcceptBackoff()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if m.stopping.Load() {
				return
			}
			if errors.Is(err, net.ErrClosed) {
				m.acceptErr = fmt.Errorf("xdispatch: accept: %w", err)
				m.stopping.Store(true)
				return
			}
			m.logger.Warn(m.stopCtx, "accept failed", xlog.Err(err))
			select {
			case <-m.stopCtx.Done():
				return
			case <-time.After(backoff.next()):
			}
			continue
		}
		backoff.reset()

		if err := pool.SubmitWait(m.stopCtx, conn); err != nil {
			m.closeConn(conn)
		}
	}
}

func (m *Manager) serveConn(worker int, conn net.Conn) {
	defer m.closeConn(conn)

	ctx, _ := xctx.WithWorker(context.Background(), worker)
	if m.stopping.Load() {
		m.logger.Debug(ctx, "connection dropped, dispatcher stopping")
		return
	}

	now := time.Now()
	if m.opts.readTimeout > 0 {
		m.setDeadline(ctx, conn.SetReadDeadline, now.Add(m.opts.readTimeout))
	}
	if m.opts.writeTimeout > 0 {
		m.setDeadline(ctx, conn.SetWriteDeadline, now.Add(m.opts.readTimeout+m.opts.writeTimeout))
	}

	meta, body, err := xreq.ReadRequest(bufio.NewReader(conn), m.opts.maxHeaderBytes)
	if errors.Is(err, io.EOF) {
		return
	}
	out := bufio.NewWriter(conn)
	raw := &xreq.RawRequest{
		Meta:       meta,
		Body:       body,
		Output:     out,
		RemoteAddr: remoteAddr(conn),
		ReceivedAt: now,
		Err:        err,
	}
	m.proc.Process(ctx, raw)
	if err := out.Flush(); err != nil {
		m.logger.Debug(ctx, "flush connection failed", xlog.Err(err))
	}
	// 关闭前读完未消费的请求体，避免对端收到 RST 而丢失响应。
	if body != nil {
		_, _ = io.Copy(io.Discard, body)
	}
}

func (m *Manager) setDeadline(ctx context.Context, set func(time.Time) error, t time.Time) {
	if err := set(t); err != nil {
		m.logger.Debug(ctx, "set deadline failed", xlog.Err(err))
	}
}

func (m *Manager) closeConn(conn net.Conn) {
	if err := conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		m.logger.Debug(context.Background(), "close connection failed", xlog.Err(err))
	}
}

func remoteAddr(conn net.Conn) string {
	if a := conn.RemoteAddr(); a != nil {
		return a.String()
	}
	return ""
}

// acceptBackoff Accept 临时错误的指数退避。
type acceptBackoff struct {
	current time.Duration
	initial time.Duration
	max     time.Duration
}

func newAcceptBackoff() *acceptBackoff {
	return &acceptBackoff{initial: 5 * time.Millisecond, max: time.Second, current: 5 * time.Millisecond}
}

func (b *acceptBackoff) reset() { b.current = b.initial }

func (b *acceptBackoff) next() time.Duration {
	d := b.current
	b.current = min(b.current*2, b.max)
	return d
}
