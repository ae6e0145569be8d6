package xmetrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/omeyang/xserve/pkg/engine/xstats"
)

const (
	defaultInstrumentationName = "github.com/omeyang/xserve/xmetrics"

	MetricRequestTotal    = "xserve.request.total"
	MetricRequestDuration = "xserve.request.duration"
	MetricRequestBytes    = "xserve.request.bytes"
)

var _ xstats.Sink = (*RequestMeter)(nil)

// RequestMeter 把统计记录转换为 OTel 指标，并发安全。
type RequestMeter struct {
	total    metric.Int64Counter
	duration metric.Float64Histogram
	bytes    metric.Int64Counter
	routes   bool
}

// NewRequestMeter 创建请求指标。
func NewRequestMeter(opts ...Option) (*RequestMeter, error) {
	cfg := &config{
		instrumentationName: defaultInstrumentationName,
		meterProvider:       otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	meter := cfg.meterProvider.Meter(cfg.instrumentationName)

	total, err := meter.Int64Counter(MetricRequestTotal,
		metric.WithDescription("processed requests"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCreateCounter, err)
	}
	duration, err := meter.Float64Histogram(MetricRequestDuration,
		metric.WithDescription("request processing duration"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCreateHistogram, err)
	}
	bytes, err := meter.Int64Counter(MetricRequestBytes,
		metric.WithDescription("request and response body bytes"),
		metric.WithUnit("By"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCreateCounter, err)
	}
	return &RequestMeter{total: total, duration: duration, bytes: bytes, routes: cfg.routes}, nil
}

// Emit 实现 xstats.Sink。
func (m *RequestMeter) Emit(ctx context.Context, r xstats.Record) {
	if m == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	attrs := metric.WithAttributeSet(requestAttrs(r, m.routes))
	m.total.Add(ctx, 1, attrs)
	m.duration.Record(ctx, r.Duration.Seconds(), attrs)
	if r.BytesIn > 0 {
		m.bytes.Add(ctx, r.BytesIn, metric.WithAttributeSet(directionIn))
	}
	if r.BytesOut > 0 {
		m.bytes.Add(ctx, r.BytesOut, metric.WithAttributeSet(directionOut))
	}
}
