package xrun

import (
	"context"
	"os"
	"os/signal"
	"time"
)

// Ticker 返回每隔 interval 调用一次 fn 的服务函数，immediate 为 true 时启动即调用一次。
// fn 返回错误时服务结束并返回该错误。
func Ticker(interval time.Duration, immediate bool, fn func(ctx context.Context) error) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if interval <= 0 {
			return ErrInvalidInterval
		}
		if fn == nil {
			return ErrNilFunc
		}
		if immediate {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(ctx); err != nil {
				return err
			}
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := fn(ctx); err != nil {
					return err
				}
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// Timer 返回延迟 delay 后调用一次 fn 的服务函数。delay 为 0 时立即调用。
func Timer(delay time.Duration, fn func(ctx context.Context) error) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if delay < 0 {
			return ErrInvalidDelay
		}
		if fn == nil {
			return ErrNilFunc
		}
		if delay == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn(ctx)
		}
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
			return fn(ctx)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

type signalSourceKey struct{}

// WithSignalSource 让 ctx 下的 SignalHandler 从 ch 读取信号，不再订阅进程信号。
// 用于测试以及由外部转发信号的场景。
func WithSignalSource(ctx context.Context, ch <-chan os.Signal) context.Context {
	return context.WithValue(ctx, signalSourceKey{}, ch)
}

func signalSource(ctx context.Context) (<-chan os.Signal, bool) {
	ch, ok := ctx.Value(signalSourceKey{}).(<-chan os.Signal)
	return ch, ok && ch != nil
}

// SignalHandler 返回一个服务函数：ctx 取消前每收到一个 signals 中的信号就调用 fn。
//
// 订阅期间这些信号不再触发默认动作；服务返回时通过 signal.Stop 恢复原有处理。
// 服务在 ctx 取消时返回 ctx.Err()。
func SignalHandler(fn func(ctx context.Context, sig os.Signal), signals ...os.Signal) func(ctx context.Context) error {
	sigs := append([]os.Signal(nil), signals...)
	return func(ctx context.Context) error {
		if fn == nil {
			return ErrNilFunc
		}
		src, injected := signalSource(ctx)
		if !injected {
			if len(sigs) == 0 {
				return ErrNoSignals
			}
			ch := make(chan os.Signal, 1)
			signal.Notify(ch, sigs...)
			defer signal.Stop(ch)
			src = ch
		}
		for {
			select {
			case sig := <-src:
				fn(ctx, sig)
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
