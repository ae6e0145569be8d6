package xrun

import "github.com/omeyang/xserve/pkg/observability/xlog"

// Option 配置 Group。
type Option func(*groupOptions)

type groupOptions struct {
	logger xlog.Logger
	name   string
}

func defaultOptions() *groupOptions {
	return &groupOptions{
		logger: xlog.Discard(),
		name:   "xrun",
	}
}

// WithLogger 设置记录服务启停的日志器。nil 被忽略。
func WithLogger(logger xlog.Logger) Option {
	return func(o *groupOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithName 设置日志中的 group 名称，默认 "xrun"。空字符串被忽略。
func WithName(name string) Option {
	return func(o *groupOptions) {
		if name != "" {
			o.name = name
		}
	}
}
