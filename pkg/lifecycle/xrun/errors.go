package xrun

import "errors"

var (
	// ErrNilFunc 服务函数为 nil。
	ErrNilFunc = errors.New("xrun: nil service func")

	// ErrInvalidInterval Ticker 的间隔必须为正数。
	ErrInvalidInterval = errors.New("xrun: interval must be positive")

	// ErrInvalidDelay Timer 的延迟不能为负数。
	ErrInvalidDelay = errors.New("xrun: delay must not be negative")

	// ErrNoSignals SignalHandler 未指定任何信号。
	ErrNoSignals = errors.New("xrun: no signals to handle")
)
