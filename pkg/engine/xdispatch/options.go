package xdispatch

import (
	"time"

	"github.com/omeyang/xserve/pkg/observability/xlog"
)

// 默认值。
const (
	DefaultWorkers   = 4
	DefaultQueueSize = 64
)

// Option 配置 Manager。
type Option func(*options)

type options struct {
	workers        int
	queueSize      int
	readTimeout    time.Duration
	writeTimeout   time.Duration
	maxHeaderBytes int
	logger         xlog.Logger
	name           string
}

func defaultOptions() options {
	return options{
		workers:   DefaultWorkers,
		queueSize: DefaultQueueSize,
		logger:    xlog.Discard(),
		name:      "xdispatch",
	}
}

// WithWorkers 设置 worker 数量。n <= 0 被忽略。
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithQueueSize 设置已接受但未处理的连接队列长度。n < 0 被忽略。
func WithQueueSize(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.queueSize = n
		}
	}
}

// WithReadTimeout 设置读取请求的超时，0 表示不限制。
func WithReadTimeout(d time.Duration) Option {
	return func(o *options) {
		o.readTimeout = d
	}
}

// WithWriteTimeout 设置写出响应的超时，0 表示不限制。
func WithWriteTimeout(d time.Duration) Option {
	return func(o *options) {
		o.writeTimeout = d
	}
}

// WithMaxHeaderBytes 设置请求头上限，默认 xreq.DefaultMaxHeaderBytes。
func WithMaxHeaderBytes(n int) Option {
	return func(o *options) {
		o.maxHeaderBytes = n
	}
}

// WithLogger 设置日志记录器。nil 被忽略。
func WithLogger(logger xlog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithName 设置名称，用于日志与 worker pool。
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}
