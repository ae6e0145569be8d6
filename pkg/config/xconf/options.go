package xconf

// Options 配置加载选项。
type Options struct {
	// Delim 键分隔符，默认 "."。
	Delim string

	// Tag 结构体标签名，默认 "koanf"。
	Tag string

	// Defaults 默认值结构体，nil 表示没有默认值层。
	Defaults any

	// EnvPrefix 环境变量前缀，空表示没有环境变量层。
	EnvPrefix string

	// EnvSections 嵌套配置段名，见 WithEnv。
	EnvSections []string
}

// Option 配置选项函数。
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		Delim: ".",
		Tag:   "koanf",
	}
}

// WithDelim 设置键分隔符。
func WithDelim(delim string) Option {
	return func(o *Options) {
		if delim != "" {
			o.Delim = delim
		}
	}
}

// WithTag 设置结构体标签名。
func WithTag(tag string) Option {
	return func(o *Options) {
		if tag != "" {
			o.Tag = tag
		}
	}
}

// WithDefaults 设置默认值层。v 为带标签的结构体或其指针。
func WithDefaults(v any) Option {
	return func(o *Options) {
		o.Defaults = v
	}
}

// WithEnv 启用环境变量层。
//
// 去掉 prefix 后键转为小写；以 sections 中某个段名加下划线开头的键，
// 第一个下划线替换为分隔符。
func WithEnv(prefix string, sections ...string) Option {
	return func(o *Options) {
		o.EnvPrefix = prefix
		o.EnvSections = sections
	}
}
