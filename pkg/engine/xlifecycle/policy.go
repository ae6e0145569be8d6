package xlifecycle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/omeyang/xserve/pkg/engine/xcounter"
	"github.com/omeyang/xserve/pkg/observability/xlog"
	"github.com/omeyang/xserve/pkg/util/xfile"
	"github.com/omeyang/xserve/pkg/util/xproc"
	"github.com/omeyang/xserve/pkg/util/xsys"
)

// 可替换的探测实现，用于测试。
var (
	memoryUsage       = xsys.MemoryUsage
	executableModTime = xproc.ExecutableModTime
	probeFile         = xfile.Probe
)

// RestartPolicy 重启条件。基线在创建时捕获，之后只有监视文件的失败计时会变化。
// Check 可被多个 worker 并发调用。
type RestartPolicy struct {
	counters      *xcounter.Counters
	maxIterations uint64
	maxMemory     uint64 // 字节

	exeBaseline time.Time
	exeTracked  bool

	watchPath    string
	watchTimeout time.Duration
	watchBase    xfile.State

	mu          sync.Mutex
	unreadSince time.Time // 监视文件开始无法读取的时间，零值表示可读

	logger xlog.Logger
	now    func() time.Time
}

// NewRestartPolicy 按配置捕获可执行文件与监视文件的基线。
//
// 可执行文件的修改时间无法读取时只记录日志并跳过该条件；监视文件的基线无法读取时返回错误。
func NewRestartPolicy(cfg Config, counters *xcounter.Counters, logger xlog.Logger) (*RestartPolicy, error) {
	if logger == nil {
		logger = xlog.Discard()
	}
	p := &RestartPolicy{
		counters:      counters,
		maxIterations: cfg.MaxIterations,
		maxMemory:     cfg.MaxMemoryMB << 20,
		watchPath:     cfg.WatchFile,
		watchTimeout:  cfg.WatchTimeout,
		logger:        logger,
		now:           time.Now,
	}

	if mod, err := executableModTime(); err != nil {
		logger.Warn(context.Background(), "executable change detection disabled", xlog.Err(err))
	} else {
		p.exeBaseline, p.exeTracked = mod, true
	}

	if p.watchPath != "" {
		st, err := probeFile(p.watchPath)
		if err != nil {
			return nil, fmt.Errorf("xlifecycle: probe watch file: %w", err)
		}
		p.watchBase = st
	}
	return p, nil
}

// Check 评估全部条件，返回第一个成立条件的描述。
func (p *RestartPolicy) Check(ctx context.Context) (reason string, restart bool) {
	if p.counters != nil && p.counters.Reached(p.maxIterations) {
		return fmt.Sprintf("iteration ceiling %d reached", p.maxIterations), true
	}
	if reason, ok := p.checkMemory(ctx); ok {
		return reason, true
	}
	if reason, ok := p.checkExecutable(ctx); ok {
		return reason, true
	}
	return p.checkWatchFile(ctx)
}

func (p *RestartPolicy) checkMemory(ctx context.Context) (string, bool) {
	if p.maxMemory == 0 {
		return "", false
	}
	used, err := memoryUsage()
	if err != nil {
		p.logger.Debug(ctx, "read memory usage failed", xlog.Err(err))
		return "", false
	}
	if used > p.maxMemory {
		return fmt.Sprintf("memory %d MiB over ceiling %d MiB", used>>20, p.maxMemory>>20), true
	}
	return "", false
}

func (p *RestartPolicy) checkExecutable(ctx context.Context) (string, bool) {
	if !p.exeTracked {
		return "", false
	}
	mod, err := executableModTime()
	if err != nil {
		p.logger.Debug(ctx, "stat executable failed", xlog.Err(err))
		return "", false
	}
	if !mod.Equal(p.exeBaseline) {
		return "executable modified", true
	}
	return "", false
}

func (p *RestartPolicy) checkWatchFile(ctx context.Context) (string, bool) {
	if p.watchPath == "" {
		return "", false
	}
	st, err := probeFile(p.watchPath)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		now := p.now()
		if p.unreadSince.IsZero() {
			p.unreadSince = now
			p.logger.Warn(ctx, "watch file unreadable", xlog.Err(err))
		}
		if now.Sub(p.unreadSince) >= p.watchTimeout {
			return fmt.Sprintf("watch file unreadable for %s", p.watchTimeout), true
		}
		return "", false
	}
	p.unreadSince = time.Time{}

	if !st.Changed(p.watchBase) {
		return "", false
	}
	if !st.Exists {
		return "watch file removed", true
	}
	if !p.watchBase.Exists {
		return "watch file created", true
	}
	return "watch file changed", true
}
