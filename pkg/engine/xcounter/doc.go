// Package xcounter 提供进程级的只增计数器。
//
// Counters 维护两个相互独立的计数：
//   - iterations: 每处理一个请求递增一次（无论成功失败）
//   - errors: 每个失败请求递增一次
//
// 两个计数都通过 atomic 的 fetch-and-add 完成，不需要额外的锁。
// 读取方只用于阈值比较（例如 Iterations() >= maxIterations），
// 读到落后一次的值不会造成错误决策。
package xcounter
