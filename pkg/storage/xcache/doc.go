// Package xcache 提供请求引擎使用的响应缓存存储。
//
// # 核心组件
//
//   - [Store]: 响应缓存与待完成请求的键值存储接口
//   - [NewMemory]: 进程内存储。响应使用 ristretto，待完成请求使用精确 LRU
//   - [NewRedis]: 基于 go-redis 的共享存储，外包一层 gobreaker 熔断器
//
// # 一致性
//
// ristretto 异步写入，MemoryStore.Put 在返回前调用 Wait，
// 保证同一进程内 Put 之后的 Get 可见。
//
// 待完成请求不能被准入策略静默丢弃，否则后续关联会失败，
// 因此单独使用 golang-lru 保存，容量满时淘汰最久未使用的条目。
//
// # 熔断
//
// Redis 连续失败达到阈值后熔断器打开，期间所有操作立即返回 [ErrUnavailable]，
// 调用方应将其视为未命中，而不是请求失败。
package xcache
