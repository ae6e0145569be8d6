package xlifecycle

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/omeyang/xserve/pkg/observability/xlog"
)

// watchService 返回监视文件的服务函数：文件所在目录出现与该文件相关的事件时调用 onEvent。
//
// 事件只是提示，是否重启仍由 RestartPolicy 的探测结果决定。
func watchService(path string, logger xlog.Logger, onEvent func(ctx context.Context)) (func(ctx context.Context) error, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("xlifecycle: create watcher: %w", err)
	}
	dir := filepath.Dir(path)
	if err := fsw.Add(dir); err != nil {
		return nil, errors.Join(fmt.Errorf("xlifecycle: watch directory %s: %w", dir, err), fsw.Close())
	}
	name := filepath.Base(path)

	return func(ctx context.Context) error {
		defer func() {
			if err := fsw.Close(); err != nil {
				logger.Debug(ctx, "close watcher failed", xlog.Err(err))
			}
		}()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case ev, ok := <-fsw.Events:
				if !ok {
					return nil
				}
				if filepath.Base(ev.Name) == name {
					onEvent(ctx)
				}
			case err, ok := <-fsw.Errors:
				if !ok {
					return nil
				}
				logger.Warn(ctx, "watch file notifier error", xlog.Err(err))
			}
		}
	}, nil
}
