// Package lifecycle 提供进程内服务编排相关的子包。
//
// 子包列表：
//   - xrun: 基于 errgroup 的服务组、周期任务与信号处理
package lifecycle
