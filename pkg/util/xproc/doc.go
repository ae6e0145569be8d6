// Package xproc 提供当前进程与其可执行文件的信息。
//
// 生命周期控制器在启动时用 [ExecutableModTime] 记录可执行文件的修改时间基线，
// 之后每个请求结束时再次比较，发现二进制被替换即触发平滑重启。
package xproc
