package xid

import "errors"

var (
	// ErrInvalidID ID 值无效（语法错误、溢出或非正数）。
	ErrInvalidID = errors.New("xid: invalid id")

	// ErrOverTimeLimit 时间分量溢出，生成器无法继续生成 ID。
	ErrOverTimeLimit = errors.New("xid: time component overflow")

	// ErrNoPrivateAddress 所有机器 ID 策略均失败且没有私有 IPv4 地址。
	ErrNoPrivateAddress = errors.New("xid: no private IP address found")

	// ErrInvalidConfig 生成器配置无效（如机器 ID 校验不通过）。
	ErrInvalidConfig = errors.New("xid: invalid config")

	// ErrNilGenerator 在 nil 或零值 Generator 上调用方法。
	ErrNilGenerator = errors.New("xid: nil generator (use NewGenerator to create)")
)
