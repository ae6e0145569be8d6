package xmetrics

import "go.opentelemetry.io/otel/metric"

type config struct {
	instrumentationName string
	meterProvider       metric.MeterProvider
	routes              bool
}

// Option 配置 RequestMeter。
type Option func(*config)

// WithInstrumentationName 设置 instrumentation 名称。空字符串被忽略。
func WithInstrumentationName(name string) Option {
	return func(cfg *config) {
		if name != "" {
			cfg.instrumentationName = name
		}
	}
}

// WithMeterProvider 设置 MeterProvider。nil 被忽略。
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(cfg *config) {
		if provider != nil {
			cfg.meterProvider = provider
		}
	}
}

// WithRouteAttribute 在请求数与耗时上附加 route 属性。
// 路由由调用方控制，基数不受限时不要开启。
func WithRouteAttribute(enable bool) Option {
	return func(cfg *config) { cfg.routes = enable }
}
