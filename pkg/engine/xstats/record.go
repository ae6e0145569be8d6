package xstats

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Record 一个请求的统计记录。
type Record struct {
	Start     time.Time
	Duration  time.Duration
	RequestID string
	Worker    int
	Route     string

	// Outcome 请求结果名，如 success、recoverable_failure
	Outcome string
	Status  int

	BytesIn  int64
	BytesOut int64

	CacheHit bool
	Deferred bool

	// Iteration 本请求计入后的迭代计数
	Iteration uint64
	// Errors 本请求结束时的错误计数快照
	Errors uint64

	// Logged 为 true 表示失败路径已输出带调用栈的日志，日志类 Sink 不再重复输出
	Logged bool
}

// String 返回单行文本表示，作为不透明的统计字符串输出。
func (r Record) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "start=%s duration=%s", r.Start.UTC().Format(time.RFC3339Nano), r.Duration)
	if r.RequestID != "" {
		fmt.Fprintf(&b, " request_id=%s", r.RequestID)
	}
	fmt.Fprintf(&b, " worker=%d", r.Worker)
	if r.Route != "" {
		fmt.Fprintf(&b, " route=%s", r.Route)
	}
	fmt.Fprintf(&b, " outcome=%s status=%d in=%d out=%d", r.Outcome, r.Status, r.BytesIn, r.BytesOut)
	if r.CacheHit {
		b.WriteString(" cache=hit")
	}
	if r.Deferred {
		b.WriteString(" deferred=true")
	}
	fmt.Fprintf(&b, " iteration=%d errors=%d", r.Iteration, r.Errors)
	return b.String()
}

// Attrs 返回 slog 属性形式。
func (r Record) Attrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.Time("start", r.Start),
		slog.Duration("duration", r.Duration),
		slog.Int("worker", r.Worker),
		slog.String("outcome", r.Outcome),
		slog.Int("status", r.Status),
		slog.Int64("bytes_in", r.BytesIn),
		slog.Int64("bytes_out", r.BytesOut),
		slog.Uint64("iteration", r.Iteration),
		slog.Uint64("errors", r.Errors),
	}
	if r.Route != "" {
		attrs = append(attrs, slog.String("route", r.Route))
	}
	if r.CacheHit {
		attrs = append(attrs, slog.Bool("cache_hit", true))
	}
	if r.Deferred {
		attrs = append(attrs, slog.Bool("deferred", true))
	}
	return attrs
}
