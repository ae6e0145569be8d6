package xcounter

import (
	"fmt"
	"sync/atomic"
)

// Counters 进程级计数器。
//
// 零值可直接使用；所有方法并发安全。计数只会前进，不提供 Reset。
type Counters struct {
	iterations atomic.Uint64
	errors     atomic.Uint64
}

// New 创建计数器。
func New() *Counters {
	return &Counters{}
}

// IncIteration 迭代计数加一，返回递增后的值。
func (c *Counters) IncIteration() uint64 {
	return c.iterations.Add(1)
}

// IncError 错误计数加一，返回递增后的值。
func (c *Counters) IncError() uint64 {
	return c.errors.Add(1)
}

// Iterations 返回当前迭代计数。
func (c *Counters) Iterations() uint64 {
	return c.iterations.Load()
}

// Errors 返回当前错误计数。
func (c *Counters) Errors() uint64 {
	return c.errors.Load()
}

// Snapshot 计数器快照。
//
// 两个字段分别读取，彼此之间没有一致性保证。
type Snapshot struct {
	Iterations uint64
	Errors     uint64
}

// String 返回快照的可读形式。
func (s Snapshot) String() string {
	return fmt.Sprintf("iterations=%d errors=%d", s.Iterations, s.Errors)
}

// Snapshot 返回当前计数快照。
func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		Iterations: c.iterations.Load(),
		Errors:     c.errors.Load(),
	}
}

// Reached 报告迭代计数是否达到上限。limit 为 0 表示不限制。
func (c *Counters) Reached(limit uint64) bool {
	return limit > 0 && c.iterations.Load() >= limit
}
