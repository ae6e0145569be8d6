// Package xdispatch 提供参考分发管理器：监听地址、接受连接并在固定 worker 上处理请求。
//
// Manager 实现 Listen / Start / Join / Stop 四个操作：
//   - Listen 绑定 tcp://host:port、unix:///path、fd://N 或裸 host:port
//   - Start 启动接受循环与 worker pool（pkg/util/xpool）
//   - Join 阻塞直到接受循环退出且已接受的连接全部处理完
//   - Stop 非阻塞、幂等：关闭监听器，拒绝尚未开始处理的连接
//
// 每个连接承载一个请求，线路格式见 pkg/engine/xreq。worker 在处理前检查停止标志，
// 因此 Stop 返回后不会再有请求交给 Processor。
//
// Send 是对应的客户端：写出一个请求并读取完整响应。
//
// 设计决策: 分发器只负责分帧与调度，分帧错误通过 RawRequest.Err 交给流水线，
// 以便计入错误计数并统一给出 400 响应。
package xdispatch
