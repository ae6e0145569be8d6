// Package xreq 定义请求引擎的数据模型与线路编码。
//
// # 数据模型
//
//   - [RawRequest]: 分发器交给 worker 的原始请求，包含传输层元数据、输入流与输出流。
//     由处理它的 worker 独占，流水线结束后即丢弃。
//   - [Env]: 从传输层元数据规范化而来的环境（类似 CGI 环境变量）。
//   - [RequestContext]: 每个在途请求唯一的上下文，持有环境、输入输出流与响应元数据。
//     只能被持有它的 worker 及其调用的业务处理器修改，不跨 worker 共享。
//   - [Snapshot]: 请求的可持久化副本，用于"延迟完成"场景下的后续关联。
//
// # 线路格式
//
// 请求：若干 KEY=VALUE 行，空行结束；随后是 CONTENT_LENGTH 字节的请求体
// （缺省时读到 EOF）。
//
//	SCRIPT_NAME=/echo
//	CONTENT_LENGTH=5
//
//	hello
//
// 响应：Status 行与若干 "Key: Value" 行，空行结束，随后是响应体。
//
//	Status: 200
//	Content-Type: text/plain
//
//	hello
//
// 这不是 HTTP，只是参考分发器与命令行客户端之间的最小约定。
package xreq
