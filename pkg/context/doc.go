// Package context 提供请求上下文相关的子包。
//
// 子包列表：
//   - xctx: 请求级字段（request_id、worker、route）的注入与提取
//
// 所有上下文信息通过 context.Context 传递，不使用全局变量。
package context
