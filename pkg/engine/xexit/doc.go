// Package xexit 提供幂等的"停止接收新请求"协调器。
//
// 进程中可能有多个路径同时决定退出：信号处理、任意 worker 的迭代上限检查、
// 致命错误路径、watch 文件变化等。Coordinator 保证这些调用中只有第一个
// 真正调用外部分发器的 Stop()，其余调用观察到已设置的标志后立即返回。
//
// 标志只会从 false 变为 true，因此无锁读取（[Coordinator.ShuttingDown]）
// 不会产生误报，只可能短暂地漏报。
//
// # 延迟绑定
//
// 分发器通常在协调器之后创建（分发器需要持有请求流水线，而流水线需要持有协调器）。
// [Coordinator.Bind] 允许稍后注入 Stopper；若绑定前已请求退出，Bind 会立即调用一次 Stop。
//
// # 注意
//
// Stopper.Stop 在协调器的互斥区内执行，不可在 Stop 中回调 RequestShutdown，
// 也不应阻塞等待在途请求完成。
package xexit
