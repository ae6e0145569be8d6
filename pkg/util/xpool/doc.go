// Package xpool 提供固定大小的泛型 worker pool。
//
// Pool 用于在固定数量的 worker 上执行任务：
//   - 泛型任务类型，handler 同时收到任务与 worker 编号（从 0 开始）
//   - 可配置的 worker 数量（[1, 65536]）和队列大小（[0, 16777216]，0 表示无缓冲）
//   - Submit 非阻塞，队列满时返回 ErrQueueFull
//   - SubmitWait 阻塞直到任务入队、ctx 结束或 pool 关闭
//   - 优雅关闭（处理完队列中的任务后退出）
//   - 超时关闭（Shutdown(ctx) 支持 context 超时/取消）
//   - panic 恢复（单个任务失败不影响 pool，含堆栈跟踪日志）
//
// # 注意事项
//
//   - New 创建后自动启动 worker
//   - Close/Shutdown 不可在 handler 内调用，否则会死锁；
//     需要在 handler 内触发关闭时，应通知外部 goroutine 执行
//   - panic 的任务不会被重试，仅记录日志后丢弃
//
// # 关闭策略
//
// Close 等价于 Shutdown(context.Background())，无限等待所有任务完成。
// Shutdown(ctx) 到期后立即返回 context 错误，残留 worker 仍会处理完剩余任务，
// 可通过 Done() 等待其最终退出。
//
// 设计决策: 关闭时先关闭 stopped 唤醒阻塞中的 SubmitWait，再在写锁下关闭队列，
// 因此不会出现向已关闭 channel 发送的情况。
package xpool
