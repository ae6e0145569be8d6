// Package xmetrics 以 OpenTelemetry 指标输出请求统计。
//
// [RequestMeter] 实现 xstats.Sink，把流水线的每条统计记录转换为指标：
//   - xserve.request.total: 请求数，属性 outcome / status_class / cache
//   - xserve.request.duration: 处理耗时（秒）
//   - xserve.request.bytes: 读写字节数，属性 direction=in|out
//
// 默认使用全局 MeterProvider，导出方式由进程自行配置。
//
//	meter, err := xmetrics.NewRequestMeter(xmetrics.WithMeterProvider(mp))
//	if err != nil {
//	    return err
//	}
//	pipeline, err := xpipeline.New(handler, counters, exit, xpipeline.WithSink(meter))
package xmetrics
