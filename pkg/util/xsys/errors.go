package xsys

import "errors"

var (
	// ErrInvalidFileLimit 文件限制值无效。
	ErrInvalidFileLimit = errors.New("xsys: file limit must be greater than 0")

	// ErrUnsupportedPlatform 当前平台不支持此操作。
	ErrUnsupportedPlatform = errors.New("xsys: unsupported platform")

	// ErrMalformedStatm /proc/self/statm 内容无法解析。
	ErrMalformedStatm = errors.New("xsys: malformed statm")
)
