package main

import (
	"context"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/xserve/pkg/config/xconf"
	"github.com/omeyang/xserve/pkg/engine/xlifecycle"
	"github.com/omeyang/xserve/pkg/engine/xstats"
	"github.com/omeyang/xserve/pkg/observability/xlog"
	"github.com/omeyang/xserve/pkg/observability/xmetrics"
	"github.com/omeyang/xserve/pkg/util/xid"
)

func cmdServe(ctx context.Context, cmd *cli.Command) error {
	cfg, src, err := loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}
	if cfg, err = applyServeFlags(cfg, cmd); err != nil {
		return err
	}

	logger, cleanup, err := xlifecycle.NewLogger(cfg.Log, cmd.Root().ErrWriter)
	if err != nil {
		return err
	}
	defer func() { _ = cleanup() }()

	opts := []xlifecycle.Option{
		xlifecycle.WithLogger(logger),
		xlifecycle.WithVersion(Version),
	}
	sinks := []xstats.Sink{xstats.NewLogSink(logger)}
	if cfg.Metrics.Enabled {
		meter, err := xmetrics.NewRequestMeter()
		if err != nil {
			return err
		}
		sinks = append(sinks, meter)
	}
	opts = append(opts, xlifecycle.WithSink(xstats.Multi(sinks...)))

	if gen, err := xid.NewGenerator(); err != nil {
		logger.Warn(ctx, "request id generator unavailable, using fallback ids", xlog.Err(err))
	} else {
		opts = append(opts, xlifecycle.WithRequestIDs(gen.NewString))
	}

	if src.Path() != "" {
		w, err := watchLogLevel(src, logger)
		if err != nil {
			logger.Warn(ctx, "config reload disabled", xlog.Err(err))
		} else {
			defer func() { _ = w.Stop() }()
		}
	}

	ctrl, err := xlifecycle.New(cfg, demoHandler(), opts...)
	if err != nil {
		return err
	}
	res, err := ctrl.Run(ctx)
	if err != nil {
		return err
	}
	if code := res.ExitCode(); code != 0 {
		return &exitError{code: code}
	}
	return nil
}

// watchLogLevel 在配置文件变化时重新应用日志级别，其他字段在下次启动时生效。
func watchLogLevel(src xconf.Config, logger xlog.LoggerWithLevel) (*xconf.Watcher, error) {
	w, err := xconf.Watch(src, func(cfg xconf.Config, err error) {
		ctx := context.Background()
		if err != nil {
			logger.Warn(ctx, "config reload failed", xlog.Err(err))
			return
		}
		next, err := xlifecycle.Decode(cfg)
		if err != nil {
			logger.Warn(ctx, "reloaded config invalid", xlog.Err(err))
			return
		}
		level, err := xlog.ParseLevel(next.Log.Level)
		if err != nil {
			return
		}
		if level != logger.GetLevel() {
			logger.SetLevel(level)
			logger.Info(ctx, "log level changed", slog.String("level", level.String()))
		}
	})
	if err != nil {
		return nil, err
	}
	w.StartAsync()
	return w, nil
}

