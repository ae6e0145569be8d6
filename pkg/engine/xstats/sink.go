package xstats

import (
	"context"

	"github.com/omeyang/xserve/pkg/observability/xlog"
)

// Sink 统计输出，实现必须并发安全。
type Sink interface {
	Emit(ctx context.Context, r Record)
}

// SinkFunc 将函数适配为 Sink。
type SinkFunc func(ctx context.Context, r Record)

// Emit 实现 Sink 接口。
func (f SinkFunc) Emit(ctx context.Context, r Record) { f(ctx, r) }

// Discard 丢弃所有记录。
var Discard Sink = SinkFunc(func(context.Context, Record) {})

// LogSink 以 Info 级别输出一行 "request" 日志。Logged 记录被跳过。
type LogSink struct {
	logger xlog.Logger
}

// NewLogSink 创建日志 Sink。
func NewLogSink(logger xlog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Emit 实现 Sink 接口。
func (s *LogSink) Emit(ctx context.Context, r Record) {
	if s == nil || s.logger == nil || r.Logged {
		return
	}
	s.logger.Info(ctx, "request", r.Attrs()...)
}

// Multi 依次分发给多个 Sink，nil 被跳过。
func Multi(sinks ...Sink) Sink {
	out := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	switch len(out) {
	case 0:
		return Discard
	case 1:
		return out[0]
	}
	return multiSink(out)
}

type multiSink []Sink

func (m multiSink) Emit(ctx context.Context, r Record) {
	for _, s := range m {
		s.Emit(ctx, r)
	}
}
