package xrun

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/omeyang/xserve/pkg/observability/xlog"
)

// Group 基于 errgroup 管理一组服务的并发运行与协调关闭。
//
// 任一服务返回非 nil 错误或父 context 被取消时，所有服务的 ctx 被取消。
// Go、GoWithName、Cancel 可并发调用；Wait 只应调用一次。
type Group struct {
	eg       *errgroup.Group
	ctx      context.Context
	causeCtx context.Context
	cancel   context.CancelCauseFunc
	opts     *groupOptions
}

// NewGroup 创建 Group，返回的 context 在任一服务失败时被取消。nil ctx 视为 Background。
func NewGroup(ctx context.Context, opts ...Option) (*Group, context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	causeCtx, cancel := context.WithCancelCause(ctx)
	eg, egCtx := errgroup.WithContext(causeCtx)
	return &Group{eg: eg, ctx: egCtx, causeCtx: causeCtx, cancel: cancel, opts: o}, egCtx
}

// Go 在新 goroutine 中运行 fn。
func (g *Group) Go(fn func(ctx context.Context) error) {
	g.eg.Go(func() error {
		if fn == nil {
			return ErrNilFunc
		}
		return fn(g.ctx)
	})
}

// GoWithName 与 Go 相同，并记录服务的启停日志。
func (g *Group) GoWithName(name string, fn func(ctx context.Context) error) {
	g.eg.Go(func() error {
		if fn == nil {
			return ErrNilFunc
		}
		attrs := []slog.Attr{slog.String("group", g.opts.name), slog.String("service", name)}
		g.opts.logger.Debug(g.ctx, "service starting", attrs...)
		err := fn(g.ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			g.opts.logger.Warn(g.ctx, "service exited with error", append(attrs, xlog.Err(err))...)
		} else {
			g.opts.logger.Debug(g.ctx, "service stopped", attrs...)
		}
		return err
	})
}

// Wait 等待全部服务返回。
//
// Group 被取消（Cancel 或父 context）导致的 context.Canceled 会被过滤；
// 若 Cancel 携带了非 Canceled 的 cause，返回该 cause。
func (g *Group) Wait() error {
	defer g.cancel(nil)

	err := g.eg.Wait()
	g.opts.logger.Debug(g.ctx, "all services stopped", slog.String("group", g.opts.name))

	if g.causeCtx.Err() != nil {
		cause := context.Cause(g.causeCtx)
		explicit := cause != nil && !errors.Is(cause, context.Canceled)
		if errors.Is(err, context.Canceled) || err == nil {
			if explicit {
				return cause
			}
			return nil
		}
	}
	return err
}

// Cancel 取消所有服务。cause 不应包装 context.Canceled，否则会被 Wait 过滤。
func (g *Group) Cancel(cause error) {
	g.cancel(cause)
}

// Context 返回 Group 的 context。
func (g *Group) Context() context.Context {
	return g.ctx
}
