package xreq

import (
	"context"
	"io"
	"strings"
)

// RequestContext 一个在途请求的上下文。
//
// 每个在途请求恰好一个，由持有它的 worker 构造，只传给该 worker 调用的业务处理器。
type RequestContext struct {
	ctx       context.Context
	env       Env
	in        io.Reader
	resp      *Response
	requestID string
	worker    int

	correlationID string
	onFailure     func(*RequestContext, error)
	cacheable     bool
}

// NewRequestContext 创建请求上下文。
func NewRequestContext(ctx context.Context, env Env, in io.Reader, resp *Response) *RequestContext {
	if ctx == nil {
		ctx = context.Background()
	}
	if in == nil {
		in = strings.NewReader("")
	}
	if resp == nil {
		resp = NewResponse(nil)
	}
	return &RequestContext{ctx: ctx, env: env, in: in, resp: resp}
}

// Context 返回请求的 context.Context。
func (rc *RequestContext) Context() context.Context { return rc.ctx }

// Env 返回规范化环境。
func (rc *RequestContext) Env() Env { return rc.env }

// Input 返回请求输入流。
func (rc *RequestContext) Input() io.Reader { return rc.in }

// Output 返回响应输出流。
func (rc *RequestContext) Output() io.Writer { return rc.resp }

// Response 返回响应元数据。
func (rc *RequestContext) Response() *Response { return rc.resp }

// SetIdentity 记录请求 ID 与处理它的 worker 编号。
func (rc *RequestContext) SetIdentity(requestID string, worker int) {
	rc.requestID = requestID
	rc.worker = worker
}

// RequestID 返回请求 ID。
func (rc *RequestContext) RequestID() string { return rc.requestID }

// Worker 返回 worker 编号。
func (rc *RequestContext) Worker() int { return rc.worker }

// SetCorrelationID 指定延迟完成时使用的关联 ID。
// 未指定时依次回退到 XSERVE_CORRELATION_ID 与请求 ID。
func (rc *RequestContext) SetCorrelationID(id string) { rc.correlationID = id }

// CorrelationID 返回关联 ID。
func (rc *RequestContext) CorrelationID() string {
	if rc.correlationID != "" {
		return rc.correlationID
	}
	if id := rc.env[KeyCorrelationID]; id != "" {
		return id
	}
	return rc.requestID
}

// OnFailure 注册异常回调。
//
// 处理器返回通用错误（或 panic）时，流水线调用一次回调，作为写出响应的最后机会。
// 重复注册以最后一次为准。
func (rc *RequestContext) OnFailure(fn func(*RequestContext, error)) { rc.onFailure = fn }

// FailureCallback 返回已注册的异常回调，可能为 nil。
func (rc *RequestContext) FailureCallback() func(*RequestContext, error) { return rc.onFailure }

// SetCacheable 标记响应是否正被捕获以写入缓存，由流水线在分发前设置。
func (rc *RequestContext) SetCacheable(v bool) { rc.cacheable = v }

// Cacheable 报告响应是否可能被缓存并在之后的命中中原样重放。
// 此时响应中不应包含每个请求各不相同的内容，例如请求 ID。
func (rc *RequestContext) Cacheable() bool { return rc.cacheable }
