package xdispatch

import "errors"

var (
	// ErrNilProcessor 未提供请求处理器。
	ErrNilProcessor = errors.New("xdispatch: nil processor")

	// ErrInvalidAddress 监听地址无法解析。
	ErrInvalidAddress = errors.New("xdispatch: invalid listen address")

	// ErrAlreadyListening Listen 被重复调用。
	ErrAlreadyListening = errors.New("xdispatch: already listening")

	// ErrNotListening Start 之前没有调用 Listen。
	ErrNotListening = errors.New("xdispatch: not listening")

	// ErrAlreadyStarted Start 被重复调用。
	ErrAlreadyStarted = errors.New("xdispatch: already started")

	// ErrNotStarted Join 之前没有调用 Start。
	ErrNotStarted = errors.New("xdispatch: not started")

	// ErrNotSocket unix 地址已存在但不是 socket 文件。
	ErrNotSocket = errors.New("xdispatch: path exists but is not a socket")
)
