// Package xjson 提供基于 goccy/go-json 的格式化输出。
//
//   - [PrettyE]: 序列化为两空格缩进的 JSON，失败时返回 [ErrMarshal] 包装的错误
//   - [Pretty]: 用于日志和命令行输出，失败时返回 "<marshal error: ...>" 标记字符串
//
// 与 encoding/json 一致，HTML 特殊字符会被转义。
package xjson
