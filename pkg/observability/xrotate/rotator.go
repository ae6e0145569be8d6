package xrotate

import "io"

var _ io.WriteCloser = (Rotator)(nil)

// Rotator 日志轮转器。
//
// 实现必须并发安全；Close 之后 Write、Rotate、Reopen 返回 [ErrClosed]。
type Rotator interface {
	// Write 写入日志数据，达到大小上限时自动轮转。
	Write(p []byte) (n int, err error)

	// Close 关闭轮转器。重复调用返回 ErrClosed。
	Close() error

	// Rotate 手动轮转：当前文件改名为备份，创建新文件。
	Rotate() error

	// Reopen 关闭当前文件句柄，下一次写入时重新打开同一路径。
	Reopen() error
}
