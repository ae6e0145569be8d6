package xlifecycle

import (
	"errors"
	"fmt"
	"time"

	"github.com/omeyang/xserve/pkg/config/xconf"
	"github.com/omeyang/xserve/pkg/engine/xdispatch"
	"github.com/omeyang/xserve/pkg/engine/xpipeline"
	"github.com/omeyang/xserve/pkg/observability/xlog"
	"github.com/omeyang/xserve/pkg/util/xfile"
)

// EnvPrefix 配置环境变量前缀。
const EnvPrefix = "XSERVE_"

// 缓存驱动。
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config 进程配置。启动后只读。
type Config struct {
	Listen    string `koanf:"listen"`
	Workers   int    `koanf:"workers"`
	QueueSize int    `koanf:"queue_size"`

	// MaxIterations 迭代上限，0 表示不限制
	MaxIterations uint64 `koanf:"max_iterations"`
	// MaxMemoryMB 常驻内存上限（MiB），0 表示不限制
	MaxMemoryMB uint64 `koanf:"max_memory_mb"`

	WatchFile string `koanf:"watch_file"`
	// WatchTimeout 监视文件持续无法读取的宽限期
	WatchTimeout time.Duration `koanf:"watch_timeout"`
	// RestartDelay 因重启条件停止时，返回前等待的时间
	RestartDelay time.Duration `koanf:"restart_delay"`
	// CheckInterval 空闲时评估重启条件的周期，0 表示只在请求结束后评估
	CheckInterval time.Duration `koanf:"check_interval"`

	StopOnFirstFailure bool `koanf:"stop_on_first_failure"`
	DeferSigterm       bool `koanf:"defer_sigterm"`
	HonorExit          bool `koanf:"honor_exit"`

	// MaxOpenFiles 启动时设置的 RLIMIT_NOFILE，0 表示保持不变
	MaxOpenFiles uint64 `koanf:"max_open_files"`

	Log     LogConfig     `koanf:"log"`
	Cache   CacheConfig   `koanf:"cache"`
	Metrics MetricsConfig `koanf:"metrics"`
}

// LogConfig 日志配置。File 为空时输出到标准错误。
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	File   string `koanf:"file"`
}

// CacheConfig 响应缓存配置。
type CacheConfig struct {
	Driver          string        `koanf:"driver"`
	TTL             time.Duration `koanf:"ttl"`
	MaxCaptureBytes int           `koanf:"max_capture_bytes"`
	MemoryMaxCost   int64         `koanf:"memory_max_cost"`
	PendingSize     int           `koanf:"pending_size"`
	PendingTTL      time.Duration `koanf:"pending_ttl"`
	RedisAddr       string        `koanf:"redis_addr"`
	RedisPrefix     string        `koanf:"redis_prefix"`
}

// MetricsConfig 指标配置。
type MetricsConfig struct {
	Enabled bool `koanf:"enabled"`
}

// DefaultConfig 返回默认配置。
func DefaultConfig() Config {
	return Config{
		Listen:       "127.0.0.1:9000",
		Workers:      xdispatch.DefaultWorkers,
		QueueSize:    xdispatch.DefaultQueueSize,
		WatchTimeout: 10 * time.Second,
		Log:          LogConfig{Level: "info", Format: "text"},
		Cache: CacheConfig{
			Driver:          CacheNone,
			MaxCaptureBytes: 1 << 20,
			MemoryMaxCost:   64 << 20,
			PendingSize:     1024,
			PendingTTL:      time.Hour,
			RedisPrefix:     "xserve:",
		},
	}
}

// Validate 检查全部字段，返回的错误匹配 xpipeline.ErrConfig。
func (c Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if c.Listen != "" {
		if _, err := xdispatch.ParseAddress(c.Listen); err != nil {
			add("listen: %w", err)
		}
	}
	if c.Workers < 1 || c.Workers > 1<<16 {
		add("workers: must be in [1, 65536], got %d", c.Workers)
	}
	if c.QueueSize < 0 {
		add("queue_size: must be >= 0, got %d", c.QueueSize)
	}
	for name, d := range map[string]time.Duration{
		"watch_timeout":  c.WatchTimeout,
		"restart_delay":  c.RestartDelay,
		"check_interval": c.CheckInterval,
	} {
		if d < 0 {
			add("%s: must be >= 0, got %s", name, d)
		}
	}
	if c.WatchFile != "" {
		if _, err := xfile.SanitizePath(c.WatchFile); err != nil {
			add("watch_file: %w", err)
		}
	}

	if _, err := xlog.ParseLevel(c.Log.Level); err != nil {
		add("log.level: %w", err)
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		add("log.format: must be text or json, got %q", c.Log.Format)
	}
	if c.Log.File != "" {
		if _, err := xfile.SanitizePath(c.Log.File); err != nil {
			add("log.file: %w", err)
		}
	}

	switch c.Cache.Driver {
	case "", CacheNone, CacheMemory:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			add("cache.redis_addr: required for the redis driver")
		}
	default:
		add("cache.driver: %w: %q", ErrUnknownCacheDriver, c.Cache.Driver)
	}
	if c.Cache.TTL < 0 || c.Cache.PendingTTL < 0 {
		add("cache: ttl values must be >= 0")
	}
	if c.Cache.MaxCaptureBytes < 0 {
		add("cache.max_capture_bytes: must be >= 0, got %d", c.Cache.MaxCaptureBytes)
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", xpipeline.ErrConfig, errors.Join(errs...))
}

// CacheEnabled 报告是否配置了缓存驱动。
func (c Config) CacheEnabled() bool {
	return c.Cache.Driver != "" && c.Cache.Driver != CacheNone
}

// ConfigSource 创建分层配置源：默认值、配置文件（path 可以为空）、XSERVE_ 环境变量。
func ConfigSource(path string) (xconf.Config, error) {
	src, err := xconf.Load(path,
		xconf.WithDefaults(DefaultConfig()),
		xconf.WithEnv(EnvPrefix, "log", "cache", "metrics"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", xpipeline.ErrConfig, err)
	}
	return src, nil
}

// Decode 从配置源解码并校验配置。
func Decode(src xconf.Config) (Config, error) {
	cfg := DefaultConfig()
	if err := src.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", xpipeline.ErrConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig 加载并校验配置。
func LoadConfig(path string) (Config, error) {
	src, err := ConfigSource(path)
	if err != nil {
		return Config{}, err
	}
	return Decode(src)
}
