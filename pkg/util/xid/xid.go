package xid

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/sony/sonyflake/v2"
)

// 设计决策: 位布局常量对应 Sonyflake v2 的固定布局（39+8+16），
// 升级大版本且布局变化时需同步更新 Decompose。
const (
	machineBits  = 16
	sequenceBits = 8
	machineMask  = (1 << machineBits) - 1
	sequenceMask = (1 << sequenceBits) - 1
)

// Components 是 ID 分解后的各部分。
type Components struct {
	ID       int64
	Time     int64
	Sequence int64
	Machine  int64
}

// Generator 并发安全的 ID 生成器。
type Generator struct {
	// next 默认为 sonyflake.NextID，测试中可替换。
	next func() (int64, error)
}

// NewGenerator 创建生成器。nil Option 被跳过。
func NewGenerator(opts ...Option) (*Generator, error) {
	cfg := &options{}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	machineID := cfg.machineID
	if machineID == nil {
		machineID = DefaultMachineID
	}
	settings := sonyflake.Settings{
		StartTime: cfg.startTime,
		MachineID: func() (int, error) {
			id, err := machineID()
			return int(id), err
		},
	}
	if cfg.checkMachineID != nil {
		check := cfg.checkMachineID
		settings.CheckMachineID = func(id int) bool {
			return check(uint16(id))
		}
	}

	sf, err := sonyflake.New(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return &Generator{next: sf.NextID}, nil
}

// New 生成 int64 形式的 ID。时间分量溢出时返回 [ErrOverTimeLimit]。
func (g *Generator) New() (int64, error) {
	if g == nil || g.next == nil {
		return 0, ErrNilGenerator
	}
	id, err := g.next()
	if err != nil {
		if errors.Is(err, sonyflake.ErrOverTimeLimit) {
			return 0, fmt.Errorf("%w: %w", ErrOverTimeLimit, err)
		}
		return 0, err
	}
	return id, nil
}

// NewString 生成 base36 字符串形式的 ID。
func (g *Generator) NewString() (string, error) {
	id, err := g.New()
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(id, 36), nil
}

// Parse 解析 NewString 生成的字符串。大小写不敏感。
func Parse(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 36, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidID, err)
	}
	if id <= 0 {
		return 0, fmt.Errorf("%w: value must be positive, got %d", ErrInvalidID, id)
	}
	return id, nil
}

// Decompose 按固定位布局分解 ID。
func Decompose(id int64) (Components, error) {
	if id <= 0 {
		return Components{}, fmt.Errorf("%w: value must be positive, got %d", ErrInvalidID, id)
	}
	return Components{
		ID:       id,
		Machine:  id & machineMask,
		Sequence: (id >> machineBits) & sequenceMask,
		Time:     id >> (machineBits + sequenceBits),
	}, nil
}
