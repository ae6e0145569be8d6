package xlifecycle

import "errors"

var (
	// ErrNilHandler 未提供业务处理器。
	ErrNilHandler = errors.New("xlifecycle: nil handler")

	// ErrAlreadyRun Run 只能调用一次。
	ErrAlreadyRun = errors.New("xlifecycle: controller already run")

	// ErrNoListener 既没有配置 listen，也没有注入监听器。
	ErrNoListener = errors.New("xlifecycle: no listen address or listener")

	// ErrUnknownCacheDriver 未知的缓存驱动。
	ErrUnknownCacheDriver = errors.New("xlifecycle: unknown cache driver")
)
