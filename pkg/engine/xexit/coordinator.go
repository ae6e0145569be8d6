package xexit

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/omeyang/xserve/pkg/observability/xlog"
)

// Stopper 外部分发器的停止能力。
//
// Stop 不要求幂等，Coordinator 保证它至多被调用一次。
type Stopper interface {
	Stop()
}

// StopperFunc 将函数适配为 Stopper。
type StopperFunc func()

// Stop 实现 Stopper 接口。
func (f StopperFunc) Stop() {
	f()
}

// Option 配置 Coordinator 的选项函数。
type Option func(*Coordinator)

// WithLogger 设置日志记录器，默认丢弃。nil 被忽略。
func WithLogger(logger xlog.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithStopper 在创建时直接绑定 Stopper。
func WithStopper(s Stopper) Option {
	return func(c *Coordinator) {
		c.stopper = s
	}
}

// Coordinator 退出协调器。
//
// 生命周期与进程一致：启动时创建，关闭后不可复用。
type Coordinator struct {
	mu        sync.Mutex
	requested atomic.Bool
	stopped   bool // stopper.Stop 是否已调用
	stopper   Stopper
	reason    string
	done      chan struct{}
	logger    xlog.Logger
}

// New 创建退出协调器。
func New(opts ...Option) *Coordinator {
	c := &Coordinator{
		done:   make(chan struct{}),
		logger: xlog.Discard(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Bind 绑定外部分发器。
//
// 如果绑定前已有 RequestShutdown 调用，Bind 会立即调用一次 s.Stop()。
func (c *Coordinator) Bind(s Stopper) error {
	if s == nil {
		return ErrNilStopper
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopper != nil {
		return ErrAlreadyBound
	}
	c.stopper = s
	if c.requested.Load() && !c.stopped {
		c.stopped = true
		s.Stop()
	}
	return nil
}

// RequestShutdown 请求停止接收新请求。
//
// 并发安全且幂等。返回 true 表示本次调用是第一个调用者（执行了停止动作），
// 其余调用者得到 false。reason 仅记录第一次调用的值。
func (c *Coordinator) RequestShutdown(reason string) bool {
	// 快速路径：标志单向变化，无锁读取不会误报
	if c.requested.Load() {
		return false
	}

	c.mu.Lock()
	if c.requested.Load() {
		c.mu.Unlock()
		return false
	}
	c.reason = reason
	c.requested.Store(true)
	if c.stopper != nil {
		c.stopped = true
		c.stopper.Stop()
	}
	close(c.done)
	c.mu.Unlock()

	c.logger.Info(context.Background(), "shutdown requested", xlog.Reason(reason))
	return true
}

// ShuttingDown 报告是否已请求退出。无锁读取。
func (c *Coordinator) ShuttingDown() bool {
	return c.requested.Load()
}

// Reason 返回第一次请求退出时给出的原因，未请求时返回空字符串。
func (c *Coordinator) Reason() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reason
}

// Done 返回在请求退出时关闭的 channel。
func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}
