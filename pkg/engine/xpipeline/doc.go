// Package xpipeline 实现单个请求的处理流水线。
//
// [Pipeline.ProcessOne] 按固定顺序执行，每一步都可能提前结束：
//
//  1. 环境捕获：把传输层元数据转换为规范化环境，失败只影响本请求
//  2. 控制请求：XSERVE_CONTROL 为 exit（需开启 honor exit）、help、version、admin 时直接处理
//  3. 缓存探测：请求可缓存且命中时直接写出缓存字节，跳过业务处理
//  4. 分发：调用业务处理器；需要缓存时输出经过复制流同时被捕获
//  5. 缓存写入：结果就绪时保存捕获；结果延后时保存请求快照
//  6. 刷新与收尾：刷新输出、更新计数器、输出统计记录
//
// # 失败分类
//
// 处理器的错误通过 [Classify] 映射为 [Kind]，流水线只对 Kind 做 switch：
//
//   - [KindEnv]: 环境解析失败，计为错误，返回尽力而为的 400 响应
//   - [KindStatusOK]: 成功区间（1xx/2xx）的状态码错误，不计为错误，只调整响应状态
//   - [KindStatus]: 其他状态码错误，计为错误，已写出的部分响应保持原样，输出标记为损坏
//   - [KindGeneric]: 通用错误或 panic，计为错误，调用异常回调，带调用栈记录日志，
//     开启 stop-on-first-failure 时触发退出协调器
//   - [KindConfig]: 启动期配置错误，进程不会进入运行状态
//
// 流水线从不自动重试，每个请求最多调用一次业务处理器。
package xpipeline
