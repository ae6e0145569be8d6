package xlog

import (
	"context"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/omeyang/xserve/pkg/observability/xrotate"
)

var _ LoggerWithLevel = (*xlogger)(nil)

// maxStackSize Stack 记录的调用栈上限（64KB）
const maxStackSize = 64 * 1024

// shared 派生 logger 共享的状态
type shared struct {
	levelVar   *slog.LevelVar
	rotator    xrotate.Rotator
	onError    func(error)
	errorCount atomic.Uint64
	inOnError  atomic.Bool
}

type xlogger struct {
	handler   slog.Handler
	addSource bool
	s         *shared
}

//go:noinline
func (l *xlogger) log(ctx context.Context, level slog.Level, msg string, attrs []slog.Attr, extra ...slog.Attr) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !l.handler.Enabled(ctx, level) {
		return
	}

	var pc uintptr
	if l.addSource {
		var pcs [1]uintptr
		// runtime.Callers → log → Debug/Info/... → 调用方
		runtime.Callers(3, pcs[:])
		pc = pcs[0]
	}

	r := slog.NewRecord(time.Now(), level, msg, pc)
	r.AddAttrs(attrs...)
	r.AddAttrs(extra...)
	if err := l.handler.Handle(ctx, r); err != nil {
		l.handleError(err)
	}
}

// handleError 记录 Handler.Handle 的失败。onError 带递归保护与 panic 隔离，
// 并发期间可能跳过部分回调，errorCount 始终计数。
func (l *xlogger) handleError(err error) {
	l.s.errorCount.Add(1)
	if l.s.onError == nil || !l.s.inOnError.CompareAndSwap(false, true) {
		return
	}
	defer l.s.inOnError.Store(false)
	defer func() {
		if recover() != nil {
			l.s.errorCount.Add(1)
		}
	}()
	l.s.onError(err)
}

func (l *xlogger) Debug(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelDebug, msg, attrs)
}

func (l *xlogger) Info(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelInfo, msg, attrs)
}

func (l *xlogger) Warn(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelWarn, msg, attrs)
}

func (l *xlogger) Error(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelError, msg, attrs)
}

func (l *xlogger) Stack(ctx context.Context, msg string, attrs ...slog.Attr) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !l.handler.Enabled(ctx, slog.LevelError) {
		return
	}
	buf := make([]byte, 4096)
	n := runtime.Stack(buf, false)
	for n == len(buf) && len(buf) < maxStackSize {
		buf = make([]byte, min(len(buf)*2, maxStackSize))
		n = runtime.Stack(buf, false)
	}
	l.log(ctx, slog.LevelError, msg, attrs, slog.String(KeyStack, string(buf[:n])))
}

func (l *xlogger) With(attrs ...slog.Attr) Logger {
	if len(attrs) == 0 {
		return l
	}
	return &xlogger{handler: l.handler.WithAttrs(attrs), addSource: l.addSource, s: l.s}
}

func (l *xlogger) WithGroup(name string) Logger {
	if name == "" {
		return l
	}
	return &xlogger{handler: l.handler.WithGroup(name), addSource: l.addSource, s: l.s}
}

func (l *xlogger) SetLevel(level Level) {
	l.s.levelVar.Set(slog.Level(level))
}

func (l *xlogger) GetLevel() Level {
	return Level(l.s.levelVar.Level())
}

func (l *xlogger) Enabled(ctx context.Context, level Level) bool {
	if ctx == nil {
		ctx = context.Background()
	}
	return l.handler.Enabled(ctx, slog.Level(level))
}

func (l *xlogger) Reopen() error {
	if l.s.rotator == nil {
		return nil
	}
	return l.s.rotator.Reopen()
}

// ErrorCount 返回 Handler 写入失败次数。
func ErrorCount(l Logger) uint64 {
	if xl, ok := l.(*xlogger); ok {
		return xl.s.errorCount.Load()
	}
	return 0
}

// Slog 返回与 l 共享 handler 的 *slog.Logger。l 不是本包构建的 Logger 时返回 slog.Default()。
func Slog(l Logger) *slog.Logger {
	if xl, ok := l.(*xlogger); ok {
		return slog.New(xl.handler)
	}
	return slog.Default()
}

// Discard 返回丢弃全部输出的 Logger，作为各组件未配置日志时的默认值。
func Discard() LoggerWithLevel {
	lv := new(slog.LevelVar)
	return &xlogger{handler: slog.DiscardHandler, s: &shared{levelVar: lv}}
}
