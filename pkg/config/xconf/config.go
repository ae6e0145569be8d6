package xconf

import "github.com/knadh/koanf/v2"

// Format 配置文件格式。
type Format string

// 支持的配置格式。
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Config 分层配置。
type Config interface {
	// Client 返回当前的 koanf 实例。
	Client() *koanf.Koanf

	// Unmarshal 将 path 下的配置解码到 target，path 为空时解码整个配置。
	Unmarshal(path string, target any) error

	// MustUnmarshal 与 Unmarshal 相同，失败时 panic。只用于启动期。
	MustUnmarshal(path string, target any)

	// Reload 重新读取配置文件并叠加全部层。从字节创建的 Config 返回 ErrNotReloadable。
	Reload() error

	// Path 返回配置文件路径，没有文件时为空。
	Path() string

	// Format 返回配置文件格式，没有文件时为空。
	Format() Format
}
