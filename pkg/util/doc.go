// Package util 提供通用工具相关的子包。
//
// 子包列表：
//   - xfile: 文件工具，路径校验、目录创建、文件状态探测
//   - xid: 基于 sonyflake 的请求 ID 生成
//   - xjson: JSON 格式化输出
//   - xpool: 泛型 Worker Pool，worker 编号、阻塞提交、优雅关闭
//   - xproc: 进程信息，PID、进程名与可执行文件修改时间
//   - xsys: 系统资源，文件描述符上限与常驻内存
//
// 设计原则：
//   - 安全处理路径遍历
//   - 跨平台兼容，平台相关实现用构建标签隔离
package util
