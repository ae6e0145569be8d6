package xid

import "time"

type options struct {
	machineID      func() (uint16, error)
	checkMachineID func(uint16) bool
	startTime      time.Time
}

// Option 配置 Generator。
type Option func(*options)

// WithMachineID 设置机器 ID 来源，默认使用 [DefaultMachineID]。
func WithMachineID(fn func() (uint16, error)) Option {
	return func(o *options) {
		o.machineID = fn
	}
}

// WithCheckMachineID 设置机器 ID 校验函数，返回 false 时 NewGenerator 失败。
func WithCheckMachineID(fn func(uint16) bool) Option {
	return func(o *options) {
		o.checkMachineID = fn
	}
}

// WithStartTime 设置时间戳分量的起点，零值使用 Sonyflake 默认 epoch。
func WithStartTime(t time.Time) Option {
	return func(o *options) {
		o.startTime = t
	}
}
