package xproc

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// 测试注入点。
var (
	osExecutable = os.Executable
	osStat       = os.Stat
)

var (
	processNameOnce  sync.Once
	processNameValue string
)

// ProcessID 返回当前进程 ID。
func ProcessID() int {
	return os.Getpid()
}

// baseName 对 "."、".." 和路径分隔符返回空字符串。
func baseName(path string) string {
	name := filepath.Base(path)
	if name == "." || name == ".." || name == string(filepath.Separator) {
		return ""
	}
	return name
}

func resolveProcessName() string {
	if exe, err := osExecutable(); err == nil && exe != "" {
		if name := baseName(exe); name != "" {
			return name
		}
	}
	if len(os.Args) == 0 || os.Args[0] == "" {
		return ""
	}
	return baseName(os.Args[0])
}

// ProcessName 返回不含路径的进程名，首次调用后缓存。全部来源无效时返回空字符串。
//
// 设计决策: 返回 string 而非 (string, error)。进程名只用于日志字段和版本输出，
// 空字符串已足以表示获取失败。
func ProcessName() string {
	processNameOnce.Do(func() {
		processNameValue = resolveProcessName()
	})
	return processNameValue
}

// ExecutablePath 返回解析过符号链接的可执行文件路径。
func ExecutablePath() (string, error) {
	exe, err := osExecutable()
	if err != nil {
		return "", fmt.Errorf("xproc: executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return exe, nil
}

// ExecutableModTime 返回可执行文件的修改时间。
//
// 部署工具通常以 rename 方式替换二进制，旧 inode 仍被进程持有，
// 因此这里对路径而非 /proc/self/exe 做 stat。
func ExecutableModTime() (time.Time, error) {
	exe, err := ExecutablePath()
	if err != nil {
		return time.Time{}, err
	}
	fi, err := osStat(exe)
	if err != nil {
		return time.Time{}, fmt.Errorf("xproc: stat executable: %w", err)
	}
	return fi.ModTime(), nil
}
