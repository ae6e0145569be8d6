// xserved 是常驻请求处理进程及其命令行工具。
//
// 用法:
//
//	xserved [全局选项] <命令> [命令参数]
//
// 命令:
//
//	serve          启动常驻进程，使用内置的演示处理器
//	send           向运行中的进程发送一个请求并打印响应
//	check-config   校验配置并打印生效值
//
// 配置按默认值、配置文件（--config 或 XSERVE_CONFIG）、XSERVE_ 环境变量、
// 显式给出的命令行参数的顺序覆盖。
//
// 退出码:
//
//	serve:          累计错误数（上限 255），配置错误为 2
//	send:           0 成功，1 请求失败或响应状态 >= 400，2 参数错误
//	check-config:   0 配置合法，2 配置非法
//
// 示例:
//
//	xserved serve --config /etc/xserve.yaml
//	xserved serve --listen unix:///run/xserve.sock --max-iterations 10000
//	xserved send --address 127.0.0.1:9000 --env SCRIPT_NAME=/echo --body hello
//	XSERVE_WORKERS=0 xserved check-config
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/xserve/pkg/engine/xpipeline"
)

// 版本信息，可通过 -ldflags "-X main.Version=..." 注入。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// exitError 命令已完成输出，只需要设置退出码。
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// usageError 参数错误，退出码 2。
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func main() {
	os.Exit(run(context.Background(), os.Args, os.Stdout, os.Stderr))
}

// createApp 创建 CLI 应用。
func createApp(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "xserved",
		Usage:     "常驻请求处理进程",
		Version:   fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "配置文件路径（yaml/json）",
				Sources: cli.EnvVars("XSERVE_CONFIG"),
			},
		},
		Commands: []*cli.Command{
			createServeCommand(),
			createSendCommand(),
			createCheckConfigCommand(),
		},
		OnUsageError: onUsageError,
		// 设计决策: 禁止 urfave/cli 直接调用 os.Exit，由 run 统一映射退出码。
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(stderr, err)
			}
		},
	}
}

// run 执行命令并返回退出码。
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	app := createApp(stdout, stderr)
	err := app.Run(ctx, args)
	if err == nil {
		return 0
	}

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}
	var usageErr *usageError
	if errors.As(err, &usageErr) {
		fmt.Fprintf(stderr, "参数错误: %v\n", usageErr)
		return 2
	}
	if errors.Is(err, xpipeline.ErrConfig) {
		fmt.Fprintf(stderr, "配置错误: %v\n", err)
		return 2
	}
	var coder cli.ExitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	fmt.Fprintf(stderr, "错误: %v\n", err)
	return 1
}

// onUsageError 把 flag 解析错误统一映射为退出码 2。
func onUsageError(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return &usageError{msg: err.Error()}
}
