// Package xrun 提供基于 errgroup + context 的进程内服务编排。
//
// 生命周期控制器用它把分发管理器、信号处理、周期性重启检查
// 组织成一个 [Group]：任一服务返回错误时其余服务收到取消信号，
// [Group.Wait] 返回第一个有意义的错误。
//
// # 服务函数
//
//   - [Ticker]: 周期执行
//   - [Timer]: 延迟执行一次
//   - [SignalHandler]: 收到信号时回调，而不是直接终止进程
//
// # 用法
//
//	g, ctx := xrun.NewGroup(ctx, xrun.WithName("xserve"), xrun.WithLogger(logger))
//	g.GoWithName("dispatch", func(ctx context.Context) error {
//	    return manager.Join(ctx)
//	})
//	g.GoWithName("signals", xrun.SignalHandler(func(ctx context.Context, sig os.Signal) {
//	    coordinator.RequestShutdown("signal " + sig.String())
//	}, syscall.SIGTERM))
//	err := g.Wait()
package xrun
