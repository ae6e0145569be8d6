// Package xsys 提供进程资源查询与限制工具。
//
//   - [SetFileLimit] / [GetFileLimit]: RLIMIT_NOFILE 的设置与查询
//   - [MemoryUsage]: 当前进程常驻内存（RSS），用于内存上限重启检查
//
// Unix 平台通过系统调用实现；其他平台返回 [ErrUnsupportedPlatform]。
// 参数校验在所有平台上行为一致。
package xsys
