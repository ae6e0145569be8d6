package xfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultDirPerm 默认目录权限（gosec G301）。
const DefaultDirPerm = 0o750

// EnsureDir 以 DefaultDirPerm 确保文件的父目录存在。
func EnsureDir(filename string) error {
	return EnsureDirWithPerm(filename, DefaultDirPerm)
}

// EnsureDirWithPerm 以指定权限确保文件的父目录存在，已存在的目录权限不变。
func EnsureDirWithPerm(filename string, perm os.FileMode) error {
	if filename == "" {
		return ErrEmptyPath
	}
	if strings.ContainsRune(filename, 0) {
		return ErrNullByte
	}
	if perm&0o100 == 0 {
		return fmt.Errorf("%w: %04o", ErrInvalidPerm, perm)
	}
	dir := filepath.Dir(filename)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, perm)
}
