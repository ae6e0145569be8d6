// Package xlifecycle 管理常驻进程的生命周期。
//
// [Controller] 按 Configuring → Running → Stopped 运行：
//
//   - Configuring: 校验配置，设置文件描述符上限，捕获可执行文件与监视文件的基线，
//     打开缓存存储，构建请求流水线，绑定监听地址
//   - Running: 启动分发管理器；按需安装 SIGTERM 延迟处理、周期性重启检查与监视文件通知
//   - Stopped: 全部 worker 退出后恢复信号处理，执行最后一次空闲回调，返回累计错误数
//
// 每个请求处理完成后，所在 worker 评估 [RestartPolicy]：迭代上限、内存上限、
// 可执行文件修改、监视文件变化或持续不可读。任一条件成立即请求退出，
// 退出动作由 xexit.Coordinator 保证只执行一次。
//
// # 配置
//
// [LoadConfig] 按默认值、配置文件、XSERVE_ 环境变量的顺序分层加载 [Config]：
//
//	cfg, err := xlifecycle.LoadConfig("xserve.yaml")
//	if err != nil {
//	    return err // 匹配 xpipeline.ErrConfig
//	}
//	ctrl, err := xlifecycle.New(cfg, handler, xlifecycle.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	res, err := ctrl.Run(ctx)
//	os.Exit(res.ExitCode())
//
// # 空闲回调
//
// [IdleHook] 在每个请求结束后与停止时执行，自身串行，默认重新打开日志文件。
// 它的互斥区与退出协调器的互斥区相互独立。
package xlifecycle
