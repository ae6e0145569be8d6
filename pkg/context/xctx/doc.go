// Package xctx 提供请求级上下文字段的注入与提取。
//
// 请求引擎为每个请求生成 request_id，并记录处理它的 worker 编号与路由名。
// 这些字段通过 context.Context 传递，由 xlog 的 EnrichHandler 自动写入日志。
//
// # 基本使用
//
//	ctx, _ := xctx.WithRequestID(ctx, "3kq9z1")
//	ctx, _ = xctx.WithWorker(ctx, 2)
//	xctx.RequestID(ctx) // "3kq9z1"
//
// # 错误处理
//
// 所有 WithXxx 函数在 ctx 为 nil 时返回 ErrNilContext；
// 提取函数在 ctx 为 nil 或字段缺失时返回零值。
package xctx
