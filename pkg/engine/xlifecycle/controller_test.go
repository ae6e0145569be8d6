package xlifecycle

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xserve/pkg/engine/xdispatch"
	"github.com/omeyang/xserve/pkg/engine/xpipeline"
	"github.com/omeyang/xserve/pkg/engine/xreq"
	"github.com/omeyang/xserve/pkg/lifecycle/xrun"
	"github.com/omeyang/xserve/pkg/observability/xlog"
	"github.com/omeyang/xserve/pkg/util/xfile"
)

const waitTimeout = 5 * time.Second

// running 在后台运行的控制器。
type running struct {
	c    *Controller
	done chan struct{}
	res  Result
	err  error
}

func (r *running) wait(t *testing.T) (Result, error) {
	t.Helper()
	select {
	case <-r.done:
	case <-time.After(waitTimeout):
		t.Fatal("controller did not stop")
	}
	return r.res, r.err
}

func (r *running) send(t *testing.T, meta []xreq.Pair, body []byte) (*xreq.ParsedResponse, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()
	return xdispatch.Send(ctx, r.c.Addr().String(), meta, body)
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Listen = ""
	cfg.Workers = 2
	return cfg
}

// start 以随机端口启动控制器并等待进入 Running。
func start(t *testing.T, ctx context.Context, cfg Config, h xpipeline.Handler, opts ...Option) *running {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	c, err := New(cfg, h, append(opts, WithListener(ln))...)
	require.NoError(t, err)

	r := &running{c: c, done: make(chan struct{})}
	go func() {
		defer close(r.done)
		r.res, r.err = c.Run(ctx)
	}()
	select {
	case <-c.Ready():
	case <-r.done:
		t.Fatalf("controller stopped before running: %v", r.err)
	case <-time.After(waitTimeout):
		t.Fatal("controller not ready")
	}
	t.Cleanup(func() {
		c.RequestShutdown("test cleanup")
		<-r.done
	})
	return r
}

func script(name string) []xreq.Pair {
	return []xreq.Pair{{Key: xreq.KeyScriptName, Value: name}}
}

// syncBuffer 并发安全的日志缓冲。
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func bufferLogger(t *testing.T) (xlog.Logger, *syncBuffer) {
	t.Helper()
	buf := &syncBuffer{}
	logger, cleanup, err := xlog.New().SetOutput(buf).SetFormat("json").SetLevelString("debug").Build()
	require.NoError(t, err)
	t.Cleanup(func() { _ = cleanup() })
	return logger, buf
}

func TestNew_Errors(t *testing.T) {
	ok := xpipeline.HandlerFunc(func(*xreq.RequestContext) (xpipeline.Result, error) {
		return xpipeline.Done(200), nil
	})

	_, err := New(DefaultConfig(), nil)
	assert.ErrorIs(t, err, xpipeline.ErrConfig)
	assert.ErrorIs(t, err, ErrNilHandler)

	bad := DefaultConfig()
	bad.Workers = 0
	_, err = New(bad, ok)
	assert.ErrorIs(t, err, xpipeline.ErrConfig)

	_, err = New(testConfig(), ok)
	assert.ErrorIs(t, err, xpipeline.ErrConfig)
	assert.ErrorIs(t, err, ErrNoListener)
}

func TestController_ServeAndCancel(t *testing.T) {
	var idle atomic.Int32
	h := xpipeline.HandlerFunc(func(rc *xreq.RequestContext) (xpipeline.Result, error) {
		body, err := io.ReadAll(rc.Input())
		if err != nil {
			return xpipeline.Result{}, err
		}
		_, _ = rc.Response().Write(bytes.ToUpper(body))
		return xpipeline.Done(200), nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := start(t, ctx, testConfig(), h, WithIdleHook(func(context.Context) error {
		idle.Add(1)
		return nil
	}))
	assert.Equal(t, StateRunning, r.c.State())
	assert.NotNil(t, r.c.Addr())

	resp, err := r.send(t, script("/upper"), []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.Status)
	assert.Equal(t, "HELLO", string(resp.Body))

	cancel()
	res, err := r.wait(t)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), res.Iterations)
	assert.Zero(t, res.Errors)
	assert.Zero(t, res.ExitCode())
	assert.Equal(t, "context canceled", res.Reason)
	assert.False(t, res.Restart)
	assert.Equal(t, StateStopped, r.c.State())
	// 请求结束后一次，停止时一次
	assert.Equal(t, int32(2), idle.Load())

	_, err = r.c.Run(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyRun)
}

func TestController_IterationCeiling(t *testing.T) {
	var calls atomic.Int32
	h := xpipeline.HandlerFunc(func(rc *xreq.RequestContext) (xpipeline.Result, error) {
		calls.Add(1)
		_, _ = rc.Response().WriteString("ok")
		return xpipeline.Done(200), nil
	})
	cfg := testConfig()
	cfg.MaxIterations = 3
	cfg.RestartDelay = 10 * time.Millisecond

	r := start(t, context.Background(), cfg, h)
	for i := range 3 {
		resp, err := r.send(t, script("/echo"), nil)
		require.NoError(t, err, "request %d", i+1)
		assert.Equal(t, "ok", string(resp.Body))
	}
	// 第 3 个请求完成时已经停止接受
	_, err := r.send(t, script("/echo"), nil)
	assert.Error(t, err)

	res, err := r.wait(t)
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, uint64(3), res.Iterations)
	assert.True(t, res.Restart)
	assert.Contains(t, res.Reason, "iteration ceiling 3")
}

func TestController_StopOnFirstFailure(t *testing.T) {
	var calls atomic.Int32
	h := xpipeline.HandlerFunc(func(*xreq.RequestContext) (xpipeline.Result, error) {
		calls.Add(1)
		return xpipeline.Result{}, errors.New("database unreachable")
	})
	cfg := testConfig()
	cfg.StopOnFirstFailure = true
	logger, logs := bufferLogger(t)

	r := start(t, context.Background(), cfg, h, WithLogger(logger))
	resp, err := r.send(t, script("/fail"), nil)
	require.NoError(t, err)
	assert.Equal(t, 500, resp.Status)

	res, err := r.wait(t)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, uint64(1), res.Iterations)
	assert.Equal(t, uint64(1), res.Errors)
	assert.Equal(t, 1, res.ExitCode())
	assert.True(t, strings.HasPrefix(res.Reason, "stop on first failure"), res.Reason)
	assert.False(t, res.Restart)
	assert.Equal(t, 1, strings.Count(logs.String(), `"msg":"shutdown requested"`))
	assert.Equal(t, 1, strings.Count(logs.String(), `"msg":"dispatcher stopping"`))
}

func TestController_DeferredSigterm(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	h := xpipeline.HandlerFunc(func(rc *xreq.RequestContext) (xpipeline.Result, error) {
		close(entered)
		<-release
		_, _ = rc.Response().WriteString("finished")
		return xpipeline.Done(200), nil
	})
	cfg := testConfig()
	cfg.DeferSigterm = true

	sigs := make(chan os.Signal, 1)
	r := start(t, xrun.WithSignalSource(context.Background(), sigs), cfg, h)

	type reply struct {
		resp *xreq.ParsedResponse
		err  error
	}
	replies := make(chan reply, 1)
	go func() {
		resp, err := r.send(t, script("/slow"), nil)
		replies <- reply{resp, err}
	}()
	<-entered

	sigs <- syscall.SIGTERM
	require.Eventually(t, r.c.Coordinator().ShuttingDown, waitTimeout, 5*time.Millisecond)
	close(release)

	got := <-replies
	require.NoError(t, got.err)
	assert.Equal(t, "finished", string(got.resp.Body))

	res, err := r.wait(t)
	require.NoError(t, err)
	assert.Equal(t, "signal "+syscall.SIGTERM.String(), res.Reason)
	assert.Equal(t, uint64(1), res.Iterations)
	assert.False(t, res.Restart)
}

func TestController_HonorExit(t *testing.T) {
	var calls atomic.Int32
	h := xpipeline.HandlerFunc(func(*xreq.RequestContext) (xpipeline.Result, error) {
		calls.Add(1)
		return xpipeline.Done(200), nil
	})
	cfg := testConfig()
	cfg.HonorExit = true

	r := start(t, context.Background(), cfg, h)
	_, err := r.send(t, []xreq.Pair{{Key: xreq.KeyControl, Value: "exit"}}, nil)
	require.NoError(t, err)

	res, err := r.wait(t)
	require.NoError(t, err)
	assert.Equal(t, "exit request", res.Reason)
	assert.Zero(t, calls.Load())
}

func TestController_MemoryCache(t *testing.T) {
	var calls atomic.Int32
	h := xpipeline.HandlerFunc(func(rc *xreq.RequestContext) (xpipeline.Result, error) {
		calls.Add(1)
		_, _ = rc.Response().WriteString("q=" + rc.Env().Get("QUERY_STRING"))
		return xpipeline.Done(200), nil
	})
	cfg := testConfig()
	cfg.Cache.Driver = CacheMemory
	cfg.Cache.MemoryMaxCost = 1 << 20

	r := start(t, context.Background(), cfg, h)
	meta := append(script("/report"), xreq.Pair{Key: "QUERY_STRING", Value: "day=1"})

	first, err := r.send(t, meta, nil)
	require.NoError(t, err)
	second, err := r.send(t, meta, nil)
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "q=day=1", string(first.Body))
	assert.Equal(t, first, second)

	// 带请求体的请求不走缓存
	_, err = r.send(t, meta, []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestController_WatchFileRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "restart.txt")
	require.NoError(t, os.WriteFile(path, []byte("1"), 0o600))

	h := xpipeline.HandlerFunc(func(*xreq.RequestContext) (xpipeline.Result, error) {
		return xpipeline.Done(200), nil
	})
	cfg := testConfig()
	cfg.WatchFile = path
	cfg.CheckInterval = 20 * time.Millisecond

	r := start(t, context.Background(), cfg, h)
	require.NoError(t, os.WriteFile(path, []byte("rollout 2"), 0o600))

	res, err := r.wait(t)
	require.NoError(t, err)
	assert.True(t, res.Restart)
	assert.Equal(t, "restart: watch file changed", res.Reason)
	assert.Zero(t, res.Iterations)
}

func TestController_ConfigureFailure(t *testing.T) {
	stubProbes(t)
	probeFile = func(string) (xfile.State, error) { return xfile.State{}, os.ErrPermission }

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()

	cfg := testConfig()
	cfg.WatchFile = "/srv/restart.txt"
	h := xpipeline.HandlerFunc(func(*xreq.RequestContext) (xpipeline.Result, error) {
		return xpipeline.Done(200), nil
	})
	c, err := New(cfg, h, WithListener(ln))
	require.NoError(t, err)

	_, err = c.Run(context.Background())
	assert.ErrorIs(t, err, xpipeline.ErrConfig)
	assert.ErrorIs(t, err, os.ErrPermission)
	assert.Equal(t, StateStopped, c.State())
	select {
	case <-c.Ready():
		t.Fatal("ready closed after configure failure")
	default:
	}

	// 注入的监听器已关闭
	_, err = net.DialTimeout("tcp", addr, time.Second)
	assert.Error(t, err)
}

func TestResult_ExitCode(t *testing.T) {
	assert.Zero(t, Result{}.ExitCode())
	assert.Equal(t, 7, Result{Errors: 7}.ExitCode())
	assert.Equal(t, 255, Result{Errors: 1000}.ExitCode())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "configuring", StateConfiguring.String())
	assert.Equal(t, "running", StateRunning.String())
	assert.Equal(t, "stopped", StateStopped.String())
	assert.Equal(t, "state(9)", State(9).String())
}

func TestDefaultFingerprint(t *testing.T) {
	fp := DefaultFingerprint()
	env := xreq.Env{xreq.KeyScriptName: "/report", "QUERY_STRING": "a=1", xreq.KeyContentLength: "0"}

	k1, ok := fp(env)
	require.True(t, ok)
	other := env.Clone()
	other["QUERY_STRING"] = "a=2"
	k2, ok := fp(other)
	require.True(t, ok)
	assert.NotEqual(t, k1, k2)

	withBody := env.Clone()
	withBody[xreq.KeyContentLength] = "12"
	_, ok = fp(withBody)
	assert.False(t, ok)

	unknownLength := env.Clone()
	delete(unknownLength, xreq.KeyContentLength)
	_, ok = fp(unknownLength)
	assert.False(t, ok)
}
