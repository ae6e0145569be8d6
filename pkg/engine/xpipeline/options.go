package xpipeline

import (
	"github.com/omeyang/xserve/pkg/engine/xstats"
	"github.com/omeyang/xserve/pkg/engine/xtee"
	"github.com/omeyang/xserve/pkg/observability/xlog"
)

// Option 配置 Pipeline。
type Option func(*Pipeline)

// WithCache 启用缓存。adapter 或 fp 为 nil 时只保存延后请求（adapter 非 nil）或完全不缓存。
func WithCache(adapter *xtee.Adapter, fp Fingerprint) Option {
	return func(p *Pipeline) {
		p.tee = adapter
		p.fingerprint = fp
	}
}

// WithSink 设置统计输出，默认丢弃。
func WithSink(sink xstats.Sink) Option {
	return func(p *Pipeline) {
		if sink != nil {
			p.sink = sink
		}
	}
}

// WithLogger 设置日志记录器。nil 被忽略。
func WithLogger(logger xlog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithRequestIDs 设置请求 ID 生成函数。生成失败时回退到进程内序号。
func WithRequestIDs(fn func() (string, error)) Option {
	return func(p *Pipeline) {
		p.newID = fn
	}
}

// WithHonorExit 允许 XSERVE_CONTROL=exit 请求关闭进程。
func WithHonorExit(enable bool) Option {
	return func(p *Pipeline) {
		p.honorExit = enable
	}
}

// WithStopOnFirstFailure 第一次通用失败后请求关闭进程。
func WithStopOnFirstFailure(enable bool) Option {
	return func(p *Pipeline) {
		p.stopOnFirstFailure = enable
	}
}

// WithVersion 设置 version 控制请求输出的版本字符串。
func WithVersion(version string) Option {
	return func(p *Pipeline) {
		if version != "" {
			p.version = version
		}
	}
}
