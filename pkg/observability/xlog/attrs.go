package xlog

import (
	"log/slog"
	"time"

	"github.com/omeyang/xserve/pkg/context/xctx"
)

// 常用属性 Key
const (
	KeyError     = "error"
	KeyStack     = "stack"
	KeyDuration  = "duration"
	KeyComponent = "component"
	KeyReason    = "reason"

	// KeyRequestID 引用 xctx 保证跨包一致
	KeyRequestID = xctx.KeyRequestID
)

// Err 创建错误属性。err 为 nil 时返回空属性（会被 slog 忽略）。
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Duration 创建耗时属性
func Duration(d time.Duration) slog.Attr {
	return slog.Duration(KeyDuration, d)
}

// Component 创建组件名属性
func Component(name string) slog.Attr {
	return slog.String(KeyComponent, name)
}

// Reason 创建原因属性
func Reason(reason string) slog.Attr {
	return slog.String(KeyReason, reason)
}
