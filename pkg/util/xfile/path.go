package xfile

import (
	"fmt"
	"path/filepath"
	"strings"
)

// hasDotDotSegment 报告路径中是否有恰好为 ".." 的段，'/' 与 '\' 都视为分隔符。
func hasDotDotSegment(path string) bool {
	for seg := range strings.FieldsFuncSeq(path, func(r rune) bool { return r == '/' || r == '\\' }) {
		if seg == ".." {
			return true
		}
	}
	return false
}

// SanitizePath 规范化文件路径。
//
// 接受绝对路径；拒绝空路径、含空字节的路径、以分隔符结尾的目录路径，
// 以及规范化后仍含 ".." 段的相对路径。
func SanitizePath(filename string) (string, error) {
	if filename == "" {
		return "", ErrEmptyPath
	}
	if strings.ContainsRune(filename, 0) {
		return "", ErrNullByte
	}
	// Clean 会移除尾部分隔符，必须先检查
	if strings.HasSuffix(filename, "/") || strings.HasSuffix(filename, "\\") {
		return "", fmt.Errorf("%w: %q is a directory", ErrInvalidPath, filename)
	}

	cleaned := filepath.Clean(filename)
	if hasDotDotSegment(cleaned) {
		return "", fmt.Errorf("%w: %q", ErrPathTraversal, filename)
	}
	if base := filepath.Base(cleaned); base == "." || base == string(filepath.Separator) {
		return "", fmt.Errorf("%w: no file name in %q", ErrInvalidPath, filename)
	}
	return cleaned, nil
}
