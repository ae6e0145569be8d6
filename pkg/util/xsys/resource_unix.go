//go:build unix

package xsys

import (
	"fmt"
	"os"
	"runtime"
	"sync"

	"golang.org/x/sys/unix"
)

// 测试注入点。替换这些变量的测试不可 t.Parallel()。
var (
	getrlimit = unix.Getrlimit
	setrlimit = unix.Setrlimit
	getrusage = unix.Getrusage
	readStatm = func() ([]byte, error) { return os.ReadFile("/proc/self/statm") }
)

// fileLimitMu 保护 SetFileLimit 的读改写序列。
var fileLimitMu sync.Mutex

// SetFileLimit 设置 RLIMIT_NOFILE 的 soft limit，仅在 hard limit 不足时提升 hard limit。
// 不会降低 hard limit，非特权进程降低后无法再提升。
func SetFileLimit(limit uint64) error {
	if err := validateFileLimit(limit); err != nil {
		return err
	}

	fileLimitMu.Lock()
	defer fileLimitMu.Unlock()

	var rlimit unix.Rlimit
	if err := getrlimit(unix.RLIMIT_NOFILE, &rlimit); err != nil {
		return fmt.Errorf("xsys: getrlimit RLIMIT_NOFILE: %w", err)
	}
	rlimit.Cur = limit
	if rlimit.Max < limit {
		rlimit.Max = limit
	}
	if err := setrlimit(unix.RLIMIT_NOFILE, &rlimit); err != nil {
		return fmt.Errorf("xsys: setrlimit RLIMIT_NOFILE: %w", err)
	}
	return nil
}

// GetFileLimit 返回 RLIMIT_NOFILE 的 soft 与 hard limit。
func GetFileLimit() (soft, hard uint64, err error) {
	var rlimit unix.Rlimit
	if err := getrlimit(unix.RLIMIT_NOFILE, &rlimit); err != nil {
		return 0, 0, fmt.Errorf("xsys: getrlimit RLIMIT_NOFILE: %w", err)
	}
	return rlimit.Cur, rlimit.Max, nil
}

// MemoryUsage 返回当前进程 RSS 字节数。
//
// Linux 读取 /proc/self/statm；不可用时回退到 getrusage 的 ru_maxrss，
// 它是峰值而非当前值，对上限检查而言偏保守。
func MemoryUsage() (uint64, error) {
	if data, err := readStatm(); err == nil {
		if rss, err := parseStatm(string(data), uint64(os.Getpagesize())); err == nil {
			return rss, nil
		}
	}

	var ru unix.Rusage
	if err := getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return 0, fmt.Errorf("xsys: getrusage: %w", err)
	}
	if ru.Maxrss < 0 {
		return 0, nil
	}
	maxrss := uint64(ru.Maxrss)
	// Darwin 以字节为单位，其余平台为 KiB。
	if runtime.GOOS != "darwin" && runtime.GOOS != "ios" {
		maxrss *= 1024
	}
	return maxrss, nil
}
