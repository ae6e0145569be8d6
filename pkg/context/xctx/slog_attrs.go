package xctx

import (
	"context"
	"log/slog"
)

// AppendRequestAttrs 将 context 中的请求字段追加到现有切片，只追加已设置的字段。
func AppendRequestAttrs(attrs []slog.Attr, ctx context.Context) []slog.Attr {
	if ctx == nil {
		return attrs
	}
	if v := RequestID(ctx); v != "" {
		attrs = append(attrs, slog.String(KeyRequestID, v))
	}
	if v, ok := Worker(ctx); ok {
		attrs = append(attrs, slog.Int(KeyWorker, v))
	}
	if v := Route(ctx); v != "" {
		attrs = append(attrs, slog.String(KeyRoute, v))
	}
	return attrs
}

// RequestAttrs 从 context 提取请求字段，都未设置时返回 nil。
// 每次调用会分配新切片，热路径建议使用 AppendRequestAttrs。
func RequestAttrs(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	attrs := AppendRequestAttrs(make([]slog.Attr, 0, requestFieldCount), ctx)
	if len(attrs) == 0 {
		return nil
	}
	return attrs
}
