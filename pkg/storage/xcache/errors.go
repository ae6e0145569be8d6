package xcache

import "errors"

var (
	// ErrNilClient 表示传入的客户端为 nil。
	ErrNilClient = errors.New("xcache: nil client")

	// ErrClosed 表示存储已关闭。
	ErrClosed = errors.New("xcache: store closed")

	// ErrEmptyKey 表示 key 为空字符串。
	ErrEmptyKey = errors.New("xcache: empty key")

	// ErrRejected 表示内存缓存拒绝了写入（写缓冲区满或超出容量）。
	ErrRejected = errors.New("xcache: value rejected")

	// ErrUnavailable 表示后端暂不可用（熔断器打开）。
	ErrUnavailable = errors.New("xcache: backend unavailable")
)
