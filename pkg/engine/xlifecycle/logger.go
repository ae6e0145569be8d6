package xlifecycle

import (
	"io"
	"log/slog"

	"github.com/omeyang/xserve/pkg/observability/xlog"
	"github.com/omeyang/xserve/pkg/util/xproc"
)

// NewLogger 按配置构建日志记录器。File 为空时写 w。
// 返回的 cleanup 关闭日志文件。
func NewLogger(cfg LogConfig, w io.Writer) (xlog.LoggerWithLevel, func() error, error) {
	b := xlog.New().
		SetLevelString(cfg.Level).
		SetFormat(cfg.Format).
		SetAttrs(slog.String("service", xproc.ProcessName()), slog.Int("pid", xproc.ProcessID()))
	if cfg.File != "" {
		b = b.SetRotation(cfg.File)
	} else if w != nil {
		b = b.SetOutput(w)
	}
	return b.Build()
}
