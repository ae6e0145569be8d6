// Package storage 提供数据存储相关的子包。
//
// 子包列表：
//   - xcache: 响应缓存与延后请求存储，支持内存（ristretto + LRU）和 Redis
//
// 设计原则：
//   - 统一的 Store 接口，后端可替换
//   - 后端故障降级为未命中，不影响请求处理
package storage
