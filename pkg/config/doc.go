// Package config 提供配置加载相关的子包。
//
// 子包列表：
//   - xconf: 基于 koanf 的分层配置与文件热重载
package config
