package xlog

import (
	"context"
	"errors"
	"log/slog"

	"github.com/omeyang/xserve/pkg/context/xctx"
)

// ErrNilHandler NewEnrichHandler 的 base handler 为 nil
var ErrNilHandler = errors.New("xlog: base handler is nil")

// EnrichHandler 在 Handle 时从 context 注入请求字段（request_id、worker、route）。
//
// 对 logger 调用 WithGroup 后，注入字段会落在 group 下，这是 slog handler 的固有行为。
type EnrichHandler struct {
	base slog.Handler
}

// NewEnrichHandler 包装 base handler
func NewEnrichHandler(base slog.Handler) (*EnrichHandler, error) {
	if base == nil {
		return nil, ErrNilHandler
	}
	return &EnrichHandler{base: base}, nil
}

// Enabled 委托给底层 handler
func (h *EnrichHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

// maxEnrichAttrs 栈上预留的注入属性数量
const maxEnrichAttrs = 3

// Handle 按 slog 契约先 Clone record 再追加属性
func (h *EnrichHandler) Handle(ctx context.Context, r slog.Record) error {
	var buf [maxEnrichAttrs]slog.Attr
	attrs := xctx.AppendRequestAttrs(buf[:0], ctx)
	if len(attrs) > 0 {
		r = r.Clone()
		r.AddAttrs(attrs...)
	}
	return h.base.Handle(ctx, r)
}

// WithAttrs 返回带额外属性的新 handler
func (h *EnrichHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &EnrichHandler{base: h.base.WithAttrs(attrs)}
}

// WithGroup 返回带分组的新 handler
func (h *EnrichHandler) WithGroup(name string) slog.Handler {
	return &EnrichHandler{base: h.base.WithGroup(name)}
}
