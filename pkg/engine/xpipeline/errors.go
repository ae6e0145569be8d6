package xpipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrNilHandler 未提供业务处理器。
	ErrNilHandler = errors.New("xpipeline: nil handler")

	// ErrNilCounters 未提供计数器。
	ErrNilCounters = errors.New("xpipeline: nil counters")

	// ErrNilCoordinator 未提供退出协调器。
	ErrNilCoordinator = errors.New("xpipeline: nil exit coordinator")

	// ErrEnvironment 请求环境无法解析。
	ErrEnvironment = errors.New("xpipeline: environment capture failed")

	// ErrConfig 配置错误，只在启动期出现。
	ErrConfig = errors.New("xpipeline: configuration error")

	// ErrPanic 业务处理器 panic。
	ErrPanic = errors.New("xpipeline: handler panic")
)

// StatusError 带状态码的处理器错误。
type StatusError struct {
	Code int
	Err  error
}

// Status 创建状态码错误，err 可以为 nil。
func Status(code int, err error) error {
	return &StatusError{Code: code, Err: err}
}

// Statusf 以格式化消息创建状态码错误。
func Statusf(code int, format string, args ...any) error {
	return &StatusError{Code: code, Err: fmt.Errorf(format, args...)}
}

func (e *StatusError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("status %d", e.Code)
	}
	return fmt.Sprintf("status %d: %v", e.Code, e.Err)
}

func (e *StatusError) Unwrap() error { return e.Err }

// SuccessRange 报告状态码是否位于 1xx/2xx 区间。
func (e *StatusError) SuccessRange() bool {
	return e.Code >= 100 && e.Code < 300
}

// PanicError 处理器 panic 的值与调用栈。
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("xpipeline: handler panic: %v", e.Value)
}

// Is 支持 errors.Is(err, ErrPanic)。
func (e *PanicError) Is(target error) bool { return target == ErrPanic }
