// Package engine 提供常驻进程请求引擎的子包。
//
// 子包列表：
//   - xreq: 原始请求、规范化环境、线路编解码、延后请求快照
//   - xcounter: 进程级迭代与错误计数
//   - xexit: 退出协调器，保证停止动作只执行一次
//   - xtee: 缓存适配器，响应复制与写入决策
//   - xstats: 每个请求的统计记录
//   - xpipeline: 单个请求的处理流水线与失败分类
//   - xdispatch: 分发管理器，监听、worker 调度与停止
//   - xlifecycle: 生命周期控制器与重启策略
//
// 依赖方向自上而下，xlifecycle 组装其余子包。
package engine
