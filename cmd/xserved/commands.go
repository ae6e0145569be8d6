package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/xserve/pkg/config/xconf"
	"github.com/omeyang/xserve/pkg/engine/xdispatch"
	"github.com/omeyang/xserve/pkg/engine/xlifecycle"
	"github.com/omeyang/xserve/pkg/engine/xreq"
	"github.com/omeyang/xserve/pkg/util/xjson"
)

// defaultSendTimeout send 命令的默认超时。
const defaultSendTimeout = 30 * time.Second

func createServeCommand() *cli.Command {
	return &cli.Command{
		Name:         "serve",
		Usage:        "启动常驻进程",
		OnUsageError: onUsageError,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "listen", Aliases: []string{"l"}, Usage: "监听地址：host:port、unix:///path 或 fd://N"},
			&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Usage: "worker 数量"},
			&cli.Uint64Flag{Name: "max-iterations", Usage: "处理该数量的请求后重启，0 表示不限制"},
			&cli.StringFlag{Name: "watch-file", Usage: "监视文件，变化或删除时重启"},
			&cli.StringFlag{Name: "log-level", Usage: "日志级别（debug/info/warn/error）"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cmdServe(ctx, cmd)
		},
	}
}

func createSendCommand() *cli.Command {
	return &cli.Command{
		Name:         "send",
		Usage:        "发送一个请求并打印响应",
		OnUsageError: onUsageError,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "address", Aliases: []string{"a"}, Usage: "目标地址，默认取配置中的 listen"},
			&cli.StringSliceFlag{Name: "env", Aliases: []string{"e"}, Usage: "请求环境 KEY=VALUE，可重复"},
			&cli.StringFlag{Name: "body", Aliases: []string{"b"}, Usage: "请求体"},
			&cli.StringFlag{Name: "body-file", Usage: "从文件读取请求体，- 表示标准输入"},
			&cli.DurationFlag{Name: "timeout", Aliases: []string{"t"}, Usage: "请求超时", Value: defaultSendTimeout},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cmdSend(ctx, cmd)
		},
	}
}

func createCheckConfigCommand() *cli.Command {
	return &cli.Command{
		Name:         "check-config",
		Usage:        "校验配置并打印生效值",
		OnUsageError: onUsageError,
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg, _, err := loadConfig(cmd.String("config"))
			if err != nil {
				return err
			}
			out, err := xjson.PrettyE(cfg)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.Root().Writer, out)
			return err
		},
	}
}

// loadConfig 加载并校验配置，同时返回配置源用于热重载。
func loadConfig(path string) (xlifecycle.Config, xconf.Config, error) {
	src, err := xlifecycle.ConfigSource(path)
	if err != nil {
		return xlifecycle.Config{}, nil, err
	}
	cfg, err := xlifecycle.Decode(src)
	if err != nil {
		return xlifecycle.Config{}, nil, err
	}
	return cfg, src, nil
}

// applyServeFlags 用显式给出的命令行参数覆盖配置。
func applyServeFlags(cfg xlifecycle.Config, cmd *cli.Command) (xlifecycle.Config, error) {
	if cmd.IsSet("listen") {
		cfg.Listen = cmd.String("listen")
	}
	if cmd.IsSet("workers") {
		cfg.Workers = cmd.Int("workers")
	}
	if cmd.IsSet("max-iterations") {
		cfg.MaxIterations = cmd.Uint64("max-iterations")
	}
	if cmd.IsSet("watch-file") {
		cfg.WatchFile = cmd.String("watch-file")
	}
	if cmd.IsSet("log-level") {
		cfg.Log.Level = cmd.String("log-level")
	}
	return cfg, cfg.Validate()
}

// parseEnvPairs 解析 KEY=VALUE 形式的请求环境。
func parseEnvPairs(values []string) ([]xreq.Pair, error) {
	pairs := make([]xreq.Pair, 0, len(values))
	for _, v := range values {
		key, value, ok := strings.Cut(v, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, &usageError{msg: fmt.Sprintf("--env %q: want KEY=VALUE", v)}
		}
		pairs = append(pairs, xreq.Pair{Key: key, Value: value})
	}
	return pairs, nil
}

// readBody 按 --body / --body-file 取得请求体，两者不能同时给出。
func readBody(cmd *cli.Command, stdin io.Reader) ([]byte, error) {
	body, file := cmd.String("body"), cmd.String("body-file")
	switch {
	case body != "" && file != "":
		return nil, &usageError{msg: "--body and --body-file are mutually exclusive"}
	case file == "-":
		return io.ReadAll(stdin)
	case file != "":
		return os.ReadFile(file)
	case body != "":
		return []byte(body), nil
	}
	return nil, nil
}

func cmdSend(ctx context.Context, cmd *cli.Command) error {
	meta, err := parseEnvPairs(cmd.StringSlice("env"))
	if err != nil {
		return err
	}
	body, err := readBody(cmd, os.Stdin)
	if err != nil {
		return err
	}

	address := cmd.String("address")
	if address == "" {
		cfg, _, err := loadConfig(cmd.String("config"))
		if err != nil {
			return err
		}
		address = cfg.Listen
	}

	ctx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
	defer cancel()
	resp, err := xdispatch.Send(ctx, address, meta, body)
	if err != nil {
		return err
	}

	w := cmd.Root().Writer
	fmt.Fprintf(w, "Status: %d\n", resp.Status)
	for _, h := range resp.Header {
		fmt.Fprintf(w, "%s: %s\n", h.Key, h.Value)
	}
	fmt.Fprintln(w)
	if _, err := w.Write(resp.Body); err != nil {
		return err
	}
	if resp.Status >= 400 {
		return &exitError{code: 1}
	}
	return nil
}
