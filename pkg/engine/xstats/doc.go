// Package xstats 定义每个请求的统计记录与统计输出。
//
// 流水线为每个请求组合一条 [Record]（开始时间、耗时、字节数、结果、错误计数快照），
// 交给 [Sink]。致命失败路径已经由日志完整记录时，不再重复输出。
//
// 内置 Sink：
//   - [LogSink]: 以一行结构化日志输出
//   - [Multi]: 依次分发给多个 Sink
//   - [Discard]: 丢弃
//
// OpenTelemetry 指标输出见 xmetrics 包。
package xstats
