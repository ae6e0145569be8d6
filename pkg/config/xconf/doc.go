// Package xconf 提供分层配置加载与热重载，基于 koanf 实现。
//
// # 分层
//
// 配置按以下顺序叠加，后者覆盖前者：
//   - 默认值：WithDefaults 传入的带 koanf 标签的结构体
//   - 配置文件：YAML（.yaml/.yml）或 JSON（.json），路径可以为空
//   - 环境变量：WithEnv 指定的前缀，如 XSERVE_MAX_ITERATIONS → max_iterations
//
// 嵌套键由 WithEnv 的 sections 声明：sections 含 "log" 时，
// XSERVE_LOG_LEVEL 映射为 log.level，其余下划线保持不变。
//
// # 并发安全
//
// Reload 重新叠加全部层，成功后在写锁下替换 koanf 实例；Client 与 Unmarshal 在读锁下进行。
// Client 返回的实例在 Reload 后仍然可用，但数据是旧的，不要长期缓存。
//
// # Unmarshal
//
// 使用 mapstructure 弱类型解码：环境变量中的 "8" 可以解码为 int，"5s" 可以解码为 time.Duration。
//
// # 监视
//
// Watch 监视配置文件所在目录（兼容编辑器的原子替换写入），防抖后调用 Reload 并通知回调。
// 没有配置文件的 Config 不支持监视。Stop 之后不再触发新的重载。
package xconf
