package xctx

import "context"

// 日志属性 Key 常量。
const (
	KeyRequestID = "request_id"
	KeyWorker    = "worker"
	KeyRoute     = "route"

	// requestFieldCount 请求字段数量，用于 slog 属性预分配
	requestFieldCount = 3
)

const (
	keyRequestID = contextKey("xctx:request_id")
	keyWorker    = contextKey("xctx:worker")
	keyRoute     = contextKey("xctx:route")
)

// WithRequestID 将 request ID 注入 context。
func WithRequestID(ctx context.Context, requestID string) (context.Context, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	return context.WithValue(ctx, keyRequestID, requestID), nil
}

// RequestID 从 context 提取 request ID，不存在返回空字符串。
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(keyRequestID).(string); ok {
		return v
	}
	return ""
}

// RequireRequestID 从 context 获取 request ID，不存在则返回错误。
func RequireRequestID(ctx context.Context) (string, error) {
	if ctx == nil {
		return "", ErrNilContext
	}
	v := RequestID(ctx)
	if v == "" {
		return "", ErrMissingRequestID
	}
	return v, nil
}

// WithWorker 将 worker 编号注入 context。
func WithWorker(ctx context.Context, worker int) (context.Context, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	return context.WithValue(ctx, keyWorker, worker), nil
}

// Worker 从 context 提取 worker 编号。
func Worker(ctx context.Context) (int, bool) {
	if ctx == nil {
		return 0, false
	}
	v, ok := ctx.Value(keyWorker).(int)
	return v, ok
}

// WithRoute 将路由名注入 context。
func WithRoute(ctx context.Context, route string) (context.Context, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	return context.WithValue(ctx, keyRoute, route), nil
}

// Route 从 context 提取路由名，不存在返回空字符串。
func Route(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(keyRoute).(string); ok {
		return v
	}
	return ""
}

// Request 请求级字段集合。
type Request struct {
	RequestID string
	Worker    int
	Route     string
}

// WithRequest 一次注入全部请求字段，空字符串字段被跳过。
func WithRequest(ctx context.Context, r Request) (context.Context, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if r.RequestID != "" {
		ctx = context.WithValue(ctx, keyRequestID, r.RequestID)
	}
	ctx = context.WithValue(ctx, keyWorker, r.Worker)
	if r.Route != "" {
		ctx = context.WithValue(ctx, keyRoute, r.Route)
	}
	return ctx, nil
}
