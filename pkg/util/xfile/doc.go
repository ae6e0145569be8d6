// Package xfile 提供文件路径校验与文件状态探测。
//
//   - SanitizePath: 规范化路径并拒绝空路径、空字节、相对穿越与目录路径
//   - EnsureDir: 确保文件的父目录存在
//   - Probe: 读取文件是否存在、修改时间与大小，用于监视文件变化
//
// SanitizePath 只做格式净化，不把路径限制在某个目录内。
package xfile
