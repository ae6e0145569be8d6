// Package observability 提供可观测性相关的子包。
//
// 子包列表：
//   - xlog: 结构化日志，基于 log/slog 扩展，支持动态级别与日志文件重新打开
//   - xrotate: 日志文件轮转，基于 lumberjack
//   - xmetrics: 请求指标，基于 OpenTelemetry
//
// 设计原则：
//   - 日志自动携带 context 中的 request_id 与 worker
//   - 指标命名遵循 OpenTelemetry 语义规范
package observability
