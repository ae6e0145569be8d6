package xlifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/omeyang/xserve/pkg/engine/xcounter"
	"github.com/omeyang/xserve/pkg/engine/xdispatch"
	"github.com/omeyang/xserve/pkg/engine/xexit"
	"github.com/omeyang/xserve/pkg/engine/xpipeline"
	"github.com/omeyang/xserve/pkg/engine/xreq"
	"github.com/omeyang/xserve/pkg/engine/xtee"
	"github.com/omeyang/xserve/pkg/lifecycle/xrun"
	"github.com/omeyang/xserve/pkg/observability/xlog"
	"github.com/omeyang/xserve/pkg/storage/xcache"
	"github.com/omeyang/xserve/pkg/util/xsys"
)

// State 控制器状态。
type State int32

const (
	StateConfiguring State = iota
	StateRunning
	StateStopped
)

// String 返回状态名。
func (s State) String() string {
	switch s {
	case StateConfiguring:
		return "configuring"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Result 一次运行的结果。
type Result struct {
	Iterations uint64
	Errors     uint64
	// Reason 第一次请求退出时给出的原因
	Reason string
	// Restart 为 true 表示由重启条件触发退出
	Restart bool
}

// ExitCode 返回进程退出码：累计错误数，上限 255。
func (r Result) ExitCode() int {
	if r.Errors > 255 {
		return 255
	}
	return int(r.Errors)
}

// Controller 进程生命周期控制器：Configuring → Running → Stopped。
//
// 计数器、退出协调器与空闲回调在 New 中创建，由所有 worker 共享，
// Run 返回后不再被修改。
type Controller struct {
	cfg     Config
	handler xpipeline.Handler
	opts    options
	logger  xlog.Logger

	counters *xcounter.Counters
	exit     *xexit.Coordinator
	idle     *IdleHook

	state   atomic.Int32
	ran     atomic.Bool
	restart atomic.Bool
	ready   chan struct{}

	policy   *RestartPolicy
	pipeline *xpipeline.Pipeline
	manager  *xdispatch.Manager
	owned    xcache.Store // 由 cache.driver 打开、需要关闭的存储

	mu   sync.Mutex
	addr net.Addr
}

// New 创建控制器。配置非法时返回匹配 xpipeline.ErrConfig 的错误。
func New(cfg Config, handler xpipeline.Handler, opts ...Option) (*Controller, error) {
	if handler == nil {
		return nil, fmt.Errorf("%w: %w", xpipeline.ErrConfig, ErrNilHandler)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if cfg.Listen == "" && o.listener == nil {
		return nil, fmt.Errorf("%w: %w", xpipeline.ErrConfig, ErrNoListener)
	}

	hook := o.idleHook
	if hook == nil {
		hook = ReopenHook(o.logger)
	}
	logger := o.logger.With(xlog.Component("xlifecycle"))
	return &Controller{
		cfg:      cfg,
		handler:  handler,
		opts:     o,
		logger:   logger,
		counters: xcounter.New(),
		exit:     xexit.New(xexit.WithLogger(o.logger)),
		idle:     NewIdleHook(hook, logger),
		ready:    make(chan struct{}),
	}, nil
}

// Counters 返回进程计数器。
func (c *Controller) Counters() *xcounter.Counters { return c.counters }

// Coordinator 返回退出协调器。
func (c *Controller) Coordinator() *xexit.Coordinator { return c.exit }

// IdleHook 返回空闲回调。
func (c *Controller) IdleHook() *IdleHook { return c.idle }

// State 返回当前状态。
func (c *Controller) State() State { return State(c.state.Load()) }

// Ready 返回进入 Running 时关闭的 channel。配置失败时永不关闭。
func (c *Controller) Ready() <-chan struct{} { return c.ready }

// Addr 返回监听地址，进入 Running 之前为 nil。
func (c *Controller) Addr() net.Addr {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.addr
}

// RequestShutdown 请求停止，语义同 xexit.Coordinator.RequestShutdown。
func (c *Controller) RequestShutdown(reason string) bool {
	return c.exit.RequestShutdown(reason)
}

// Run 运行到全部 worker 退出，只能调用一次。
//
// ctx 取消等同于请求退出，已开始处理的请求会正常完成。
// 配置阶段的错误匹配 xpipeline.ErrConfig，此时不会进入 Running。
func (c *Controller) Run(ctx context.Context) (Result, error) {
	if !c.ran.CompareAndSwap(false, true) {
		return Result{}, ErrAlreadyRun
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer c.state.Store(int32(StateStopped))

	if err := c.configure(ctx); err != nil {
		if c.manager == nil && c.opts.listener != nil {
			_ = c.opts.listener.Close()
		}
		c.closeStore(ctx)
		return c.result(), err
	}
	if err := c.manager.Start(); err != nil {
		c.manager.Stop()
		c.closeStore(ctx)
		return c.result(), fmt.Errorf("xlifecycle: start dispatcher: %w", err)
	}

	c.mu.Lock()
	c.addr = c.manager.Addr()
	c.mu.Unlock()
	c.state.Store(int32(StateRunning))
	close(c.ready)
	c.logger.Info(ctx, "running",
		slog.String("addr", c.addr.String()),
		slog.Int("workers", c.cfg.Workers),
		slog.Uint64("max_iterations", c.cfg.MaxIterations))

	svcCtx, stopServices := context.WithCancel(ctx)
	defer stopServices()
	g := c.startServices(svcCtx, ctx)

	joinErr := c.manager.Join()
	if joinErr != nil {
		c.logger.Error(ctx, "dispatcher failed", xlog.Err(joinErr))
	}
	c.exit.RequestShutdown("dispatcher stopped")

	// 服务返回时恢复信号的默认处理
	stopServices()
	if err := g.Wait(); err != nil {
		c.logger.Warn(ctx, "lifecycle service failed", xlog.Err(err))
	}

	c.idle.Run(context.WithoutCancel(ctx))
	c.closeStore(ctx)

	res := c.result()
	c.logger.Info(ctx, "stopped",
		slog.Uint64("iterations", res.Iterations),
		slog.Uint64("errors", res.Errors),
		xlog.Reason(res.Reason),
		slog.Bool("restart", res.Restart))

	if res.Restart && c.cfg.RestartDelay > 0 {
		wait := xrun.Timer(c.cfg.RestartDelay, func(context.Context) error { return nil })
		if err := wait(ctx); err != nil {
			c.logger.Debug(ctx, "restart delay interrupted", xlog.Err(err))
		}
	}
	return res, joinErr
}

// configure 完成 Configuring 阶段：资源限制、重启基线、缓存、流水线、监听。
func (c *Controller) configure(ctx context.Context) error {
	if c.cfg.MaxOpenFiles > 0 {
		if err := xsys.SetFileLimit(c.cfg.MaxOpenFiles); err != nil {
			return configError("max_open_files", err)
		}
	}

	policy, err := NewRestartPolicy(c.cfg, c.counters, c.logger)
	if err != nil {
		return configError("watch_file", err)
	}
	c.policy = policy

	popts := []xpipeline.Option{
		xpipeline.WithLogger(c.opts.logger),
		xpipeline.WithSink(c.opts.sink),
		xpipeline.WithRequestIDs(c.opts.requestIDs),
		xpipeline.WithHonorExit(c.cfg.HonorExit),
		xpipeline.WithStopOnFirstFailure(c.cfg.StopOnFirstFailure),
		xpipeline.WithVersion(c.opts.version),
	}
	store := c.opts.store
	if store == nil && c.cfg.CacheEnabled() {
		if store, err = OpenStore(c.cfg.Cache); err != nil {
			return configError("cache", err)
		}
		c.owned = store
	}
	if store != nil {
		adapter, err := xtee.New(store,
			xtee.WithMaxCapture(c.cfg.Cache.MaxCaptureBytes),
			xtee.WithLogger(c.opts.logger))
		if err != nil {
			return configError("cache", err)
		}
		fp := c.opts.fingerprint
		if fp == nil {
			fp = DefaultFingerprint()
		}
		popts = append(popts, xpipeline.WithCache(adapter, fp))
	}
	if c.pipeline, err = xpipeline.New(c.handler, c.counters, c.exit, popts...); err != nil {
		return configError("pipeline", err)
	}

	mgr, err := xdispatch.New(xdispatch.ProcessorFunc(c.process),
		xdispatch.WithWorkers(c.cfg.Workers),
		xdispatch.WithQueueSize(c.cfg.QueueSize),
		xdispatch.WithLogger(c.opts.logger))
	if err != nil {
		return configError("dispatcher", err)
	}
	if c.opts.listener != nil {
		err = mgr.UseListener(c.opts.listener)
	} else {
		err = mgr.Listen(c.cfg.Listen)
	}
	if err != nil {
		return configError("listen", err)
	}
	if err := c.exit.Bind(mgr); err != nil {
		mgr.Stop()
		return configError("dispatcher", err)
	}
	c.manager = mgr
	c.logger.Debug(ctx, "configured",
		slog.Bool("cache", store != nil),
		slog.Bool("defer_sigterm", c.cfg.DeferSigterm),
		slog.String("watch_file", c.cfg.WatchFile))
	return nil
}

// startServices 启动 Running 阶段的后台服务。parent 取消视为请求退出。
func (c *Controller) startServices(svcCtx, parent context.Context) *xrun.Group {
	g, _ := xrun.NewGroup(svcCtx, xrun.WithLogger(c.logger), xrun.WithName("xlifecycle"))

	g.GoWithName("context", func(ctx context.Context) error {
		<-ctx.Done()
		if parent.Err() != nil {
			c.exit.RequestShutdown("context canceled")
		}
		return nil
	})
	if c.cfg.DeferSigterm {
		g.GoWithName("signals", xrun.SignalHandler(func(ctx context.Context, sig os.Signal) {
			c.logger.Info(ctx, "termination deferred until in-flight requests finish", slog.String("signal", sig.String()))
			c.exit.RequestShutdown("signal " + sig.String())
		}, syscall.SIGTERM))
	}
	if c.cfg.CheckInterval > 0 {
		g.GoWithName("restart-check", xrun.Ticker(c.cfg.CheckInterval, false, func(ctx context.Context) error {
			c.checkRestart(ctx)
			return nil
		}))
	}
	if c.cfg.WatchFile != "" {
		svc, err := watchService(c.cfg.WatchFile, c.logger, c.checkRestart)
		if err != nil {
			// 请求结束后的检查与 check_interval 仍然生效
			c.logger.Warn(parent, "watch file notifier disabled", xlog.Err(err))
		} else {
			g.GoWithName("watch-file", svc)
		}
	}
	return g
}

// process 是每个 worker 处理一个请求的入口。
func (c *Controller) process(ctx context.Context, raw *xreq.RawRequest) {
	if c.exit.ShuttingDown() {
		c.logger.Debug(ctx, "request dropped, shutting down")
		return
	}
	c.pipeline.ProcessOne(ctx, raw)
	c.checkRestart(ctx)
	c.idle.Run(ctx)
}

// checkRestart 评估重启条件，成立时请求退出。
func (c *Controller) checkRestart(ctx context.Context) {
	if c.exit.ShuttingDown() {
		return
	}
	reason, ok := c.policy.Check(ctx)
	if !ok {
		return
	}
	if c.exit.RequestShutdown("restart: " + reason) {
		c.restart.Store(true)
		c.logger.Info(ctx, "restart condition met", xlog.Reason(reason))
	}
}

func (c *Controller) closeStore(ctx context.Context) {
	if c.owned == nil {
		return
	}
	if err := c.owned.Close(); err != nil {
		c.logger.Warn(ctx, "close cache store failed", xlog.Err(err))
	}
	c.owned = nil
}

func (c *Controller) result() Result {
	snap := c.counters.Snapshot()
	return Result{
		Iterations: snap.Iterations,
		Errors:     snap.Errors,
		Reason:     c.exit.Reason(),
		Restart:    c.restart.Load(),
	}
}

func configError(field string, err error) error {
	if errors.Is(err, xpipeline.ErrConfig) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", xpipeline.ErrConfig, field, err)
}
