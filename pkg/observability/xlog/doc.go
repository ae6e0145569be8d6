// Package xlog 基于 log/slog 的结构化日志库。
//
// # 核心功能
//
//   - Builder 模式配置（输出目标、级别、格式、文件轮转）
//   - 自动从 context 注入 request_id、worker、route（EnrichHandler，默认启用）
//   - 动态级别调整，配置热更新时无需重建 Logger
//   - Reopen：空闲时重新打开日志文件
//
// # 创建 Logger
//
// Builder 遵循 first-error-wins：遇到第一个配置错误后，后续 Set 操作被跳过，
// 错误在 [Builder.Build] 时返回。
//
//	logger, cleanup, err := xlog.New().
//		SetLevelString("debug").
//		SetFormat("json").
//		SetRotation("/var/log/xserved/xserved.log").
//		Build()
//	if err != nil {
//		return err
//	}
//	defer cleanup()
//
// # 与 *slog.Logger 互通
//
// 底层包与第三方库通常接受 *slog.Logger，使用 [Slog] 转换，
// 得到的 *slog.Logger 共享同一 handler 与动态级别。
//
// # 日志级别
//
// LevelDebug(-4)、LevelInfo(0)、LevelWarn(4)、LevelError(8)，
// 可通过 [ParseLevel] 从字符串解析。
package xlog
