// Package xrotate 提供日志文件的轮转与重新打开。
//
// Rotator 在 io.WriteCloser 之上增加两个操作：
//   - Rotate: 将当前文件改名为备份并创建新文件
//   - Reopen: 关闭当前文件句柄，下一次写入时按原路径重新打开
//
// Reopen 用于配合外部 logrotate 等工具：文件被外部改名或删除后，
// 进程在空闲时调用 Reopen 即可写入新文件。
//
// 当前实现 [NewLumberjack] 基于 lumberjack v2，所有方法并发安全。
package xrotate
