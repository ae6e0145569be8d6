package xlifecycle

import (
	"context"
	"net"

	"github.com/omeyang/xserve/pkg/engine/xpipeline"
	"github.com/omeyang/xserve/pkg/engine/xstats"
	"github.com/omeyang/xserve/pkg/observability/xlog"
	"github.com/omeyang/xserve/pkg/storage/xcache"
)

// Option 配置 Controller。
type Option func(*options)

type options struct {
	logger      xlog.Logger
	store       xcache.Store
	fingerprint xpipeline.Fingerprint
	sink        xstats.Sink
	idleHook    func(ctx context.Context) error
	requestIDs  func() (string, error)
	version     string
	listener    net.Listener
}

func defaultOptions() options {
	return options{logger: xlog.Discard()}
}

// WithLogger 设置日志记录器。nil 被忽略。
//
// 未设置 WithIdleHook 且 logger 实现 xlog.Reopener 时，空闲回调默认重新打开日志文件。
func WithLogger(logger xlog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithStore 注入缓存存储，优先于 cache.driver。注入的存储由调用方关闭。
func WithStore(store xcache.Store) Option {
	return func(o *options) { o.store = store }
}

// WithFingerprint 设置缓存指纹函数，默认 DefaultFingerprint。
func WithFingerprint(fp xpipeline.Fingerprint) Option {
	return func(o *options) { o.fingerprint = fp }
}

// WithSink 设置统计记录接收端。
func WithSink(sink xstats.Sink) Option {
	return func(o *options) { o.sink = sink }
}

// WithIdleHook 设置空闲回调，替换默认的日志重新打开。
func WithIdleHook(fn func(ctx context.Context) error) Option {
	return func(o *options) { o.idleHook = fn }
}

// WithRequestIDs 设置请求 ID 生成函数。
func WithRequestIDs(fn func() (string, error)) Option {
	return func(o *options) { o.requestIDs = fn }
}

// WithVersion 设置 version 控制指令返回的版本号。
func WithVersion(version string) Option {
	return func(o *options) { o.version = version }
}

// WithListener 使用已创建的监听器，优先于 Config.Listen。
// 监听器的所有权转移给 Controller。
func WithListener(ln net.Listener) Option {
	return func(o *options) { o.listener = ln }
}
