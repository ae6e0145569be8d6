package xconf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// koanfConfig Config 的 koanf 实现。
type koanfConfig struct {
	mu     sync.RWMutex
	k      *koanf.Koanf
	path   string
	format Format
	data   []byte // 从字节创建时的原始数据
	opts   *Options
}

// New 从配置文件创建 Config，格式由扩展名决定。
func New(path string, opts ...Option) (Config, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	return Load(path, opts...)
}

// Load 叠加默认值、配置文件与环境变量创建 Config。path 为空时跳过文件层。
func Load(path string, opts ...Option) (Config, error) {
	c := &koanfConfig{path: path, opts: applyOptions(opts)}
	if path != "" {
		format, err := detectFormat(path)
		if err != nil {
			return nil, err
		}
		c.format = format
	}
	k, err := c.build()
	if err != nil {
		return nil, err
	}
	c.k = k
	return c, nil
}

// NewFromBytes 从字节数据创建 Config，仍然叠加默认值与环境变量层。空数据视为空文件。
func NewFromBytes(data []byte, format Format, opts ...Option) (Config, error) {
	if !isValidFormat(format) {
		return nil, ErrUnsupportedFormat
	}
	c := &koanfConfig{format: format, data: data, opts: applyOptions(opts)}
	k, err := c.build()
	if err != nil {
		return nil, err
	}
	c.k = k
	return c, nil
}

func applyOptions(opts []Option) *Options {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// build 依次叠加全部层，返回新的 koanf 实例。
func (c *koanfConfig) build() (*koanf.Koanf, error) {
	k := koanf.New(c.opts.Delim)

	if c.opts.Defaults != nil {
		if err := k.Load(structs.Provider(c.opts.Defaults, c.opts.Tag), nil); err != nil {
			return nil, fmt.Errorf("%w: defaults: %w", ErrLoadFailed, err)
		}
	}

	data := c.data
	if c.path != "" {
		raw, err := os.ReadFile(c.path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
		}
		data = raw
	}
	if len(data) > 0 {
		if err := loadData(k, data, c.format); err != nil {
			return nil, err
		}
	}

	if prefix := c.opts.EnvPrefix; prefix != "" {
		delim, sections := c.opts.Delim, c.opts.EnvSections
		provider := env.Provider(prefix, delim, func(name string) string {
			return envKey(name, prefix, delim, sections)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, fmt.Errorf("%w: environment: %w", ErrLoadFailed, err)
		}
	}
	return k, nil
}

func (c *koanfConfig) Client() *koanf.Koanf {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.k
}

func (c *koanfConfig) Unmarshal(path string, target any) error {
	k := c.Client()
	if err := k.UnmarshalWithConf(path, target, koanf.UnmarshalConf{Tag: c.opts.Tag}); err != nil {
		return fmt.Errorf("%w: %w", ErrUnmarshalFailed, err)
	}
	return nil
}

func (c *koanfConfig) MustUnmarshal(path string, target any) {
	if err := c.Unmarshal(path, target); err != nil {
		panic(err)
	}
}

func (c *koanfConfig) Reload() error {
	if c.path == "" {
		return ErrNotReloadable
	}
	k, err := c.build()
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.k = k
	c.mu.Unlock()
	return nil
}

func (c *koanfConfig) Path() string { return c.path }

func (c *koanfConfig) Format() Format { return c.format }

func detectFormat(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown extension %q", ErrUnsupportedFormat, ext)
	}
}

func isValidFormat(format Format) bool {
	return format == FormatYAML || format == FormatJSON
}

func loadData(k *koanf.Koanf, data []byte, format Format) error {
	var parser koanf.Parser
	switch format {
	case FormatYAML:
		parser = yaml.Parser()
	case FormatJSON:
		parser = json.Parser()
	default:
		return ErrUnsupportedFormat
	}
	if err := k.Load(rawbytes.Provider(data), parser); err != nil {
		return fmt.Errorf("%w: %w", ErrParseFailed, err)
	}
	return nil
}
