package xreq

import (
	"io"
	"time"
)

// RawRequest 分发器交给 worker 的原始请求。
//
// 对内容没有任何前置条件，畸形输入是正常情况，由流水线的环境捕获阶段处理。
type RawRequest struct {
	// Meta 传输层元数据，保持原始顺序。
	Meta []Pair

	// Body 请求输入流。可以为 nil（视为空输入）。
	Body io.Reader

	// Output 响应输出流。
	Output io.Writer

	// RemoteAddr 对端地址，可以为空。
	RemoteAddr string

	// ReceivedAt 分发器收到请求的时间，零值表示未知。
	ReceivedAt time.Time

	// Err 传输层分帧错误。非 nil 时流水线按环境错误处理该请求。
	Err error
}

// Flusher 支持显式刷新的输出流。
type Flusher interface {
	Flush() error
}
