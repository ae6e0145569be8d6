package xcache

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	lru "github.com/hashicorp/golang-lru/v2"
)

// MinMemoryMaxCost 内存缓存最小容量（1MB）
const MinMemoryMaxCost = 1 << 20

// MemoryOptions 内存存储配置
type MemoryOptions struct {
	// NumCounters 频率计数器数量，建议为预期 key 数量的 10 倍，默认 1e6
	NumCounters int64
	// MaxCost 响应缓存容量（字节），默认 64MB
	MaxCost int64
	// BufferItems 写缓冲区大小，默认 64
	BufferItems int64
	// TTL 响应缓存条目的存活时间，0 表示不过期
	TTL time.Duration
	// PendingSize 待完成请求最大条目数，默认 4096
	PendingSize int
	// PendingTTL 待完成请求的存活时间，0 表示不过期
	PendingTTL time.Duration
}

// MemoryOption 配置内存存储
type MemoryOption func(*MemoryOptions)

func defaultMemoryOptions() *MemoryOptions {
	return &MemoryOptions{
		NumCounters: 1e6,
		MaxCost:     64 << 20,
		BufferItems: 64,
		PendingSize: 4096,
	}
}

// WithMemoryMaxCost 设置容量，小于 MinMemoryMaxCost 时取 MinMemoryMaxCost，<= 0 忽略
func WithMemoryMaxCost(cost int64) MemoryOption {
	return func(o *MemoryOptions) {
		if cost > 0 {
			o.MaxCost = max(cost, MinMemoryMaxCost)
		}
	}
}

// WithMemoryNumCounters 设置频率计数器数量，<= 0 忽略
func WithMemoryNumCounters(n int64) MemoryOption {
	return func(o *MemoryOptions) {
		if n > 0 {
			o.NumCounters = n
		}
	}
}

// WithMemoryTTL 设置响应缓存 TTL
func WithMemoryTTL(ttl time.Duration) MemoryOption {
	return func(o *MemoryOptions) {
		if ttl >= 0 {
			o.TTL = ttl
		}
	}
}

// WithPendingSize 设置待完成请求容量，<= 0 忽略
func WithPendingSize(n int) MemoryOption {
	return func(o *MemoryOptions) {
		if n > 0 {
			o.PendingSize = n
		}
	}
}

// WithPendingTTL 设置待完成请求 TTL
func WithPendingTTL(ttl time.Duration) MemoryOption {
	return func(o *MemoryOptions) {
		if ttl >= 0 {
			o.PendingTTL = ttl
		}
	}
}

// MemoryStats 内存存储统计
type MemoryStats struct {
	Hits        uint64
	Misses      uint64
	HitRatio    float64
	KeysAdded   uint64
	KeysEvicted uint64
	Pending     int
}

type pendingEntry struct {
	data    []byte
	expires time.Time // 零值表示不过期
}

// MemoryStore 进程内存储
type MemoryStore struct {
	cache   *ristretto.Cache[string, []byte]
	pending *lru.Cache[string, pendingEntry]
	opts    MemoryOptions
	closed  atomic.Bool
	now     func() time.Time
}

// NewMemory 创建内存存储
func NewMemory(opts ...MemoryOption) (*MemoryStore, error) {
	o := defaultMemoryOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	cache, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: o.NumCounters,
		MaxCost:     o.MaxCost,
		BufferItems: o.BufferItems,
		Metrics:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("xcache: create memory cache: %w", err)
	}
	pending, err := lru.New[string, pendingEntry](o.PendingSize)
	if err != nil {
		cache.Close()
		return nil, fmt.Errorf("xcache: create pending cache: %w", err)
	}
	return &MemoryStore{cache: cache, pending: pending, opts: *o, now: time.Now}, nil
}

// Get 实现 Store
func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	if m.closed.Load() {
		return nil, false, ErrClosed
	}
	if key == "" {
		return nil, false, ErrEmptyKey
	}
	v, ok := m.cache.Get(key)
	return v, ok, nil
}

// Put 实现 Store。返回前等待写入生效。
func (m *MemoryStore) Put(_ context.Context, key string, value []byte) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if key == "" {
		return ErrEmptyKey
	}
	var ok bool
	if m.opts.TTL > 0 {
		ok = m.cache.SetWithTTL(key, value, int64(len(value)), m.opts.TTL)
	} else {
		ok = m.cache.Set(key, value, int64(len(value)))
	}
	if !ok {
		return ErrRejected
	}
	m.cache.Wait()
	return nil
}

// GetPendingRequest 实现 Store，过期条目视为未命中并被删除
func (m *MemoryStore) GetPendingRequest(_ context.Context, id string) ([]byte, bool, error) {
	if m.closed.Load() {
		return nil, false, ErrClosed
	}
	if id == "" {
		return nil, false, ErrEmptyKey
	}
	e, ok := m.pending.Get(id)
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		m.pending.Remove(id)
		return nil, false, nil
	}
	return e.data, true, nil
}

// PutPendingRequest 实现 Store
func (m *MemoryStore) PutPendingRequest(_ context.Context, id string, snapshot []byte) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if id == "" {
		return ErrEmptyKey
	}
	e := pendingEntry{data: snapshot}
	if m.opts.PendingTTL > 0 {
		e.expires = m.now().Add(m.opts.PendingTTL)
	}
	m.pending.Add(id, e)
	return nil
}

// Stats 返回统计信息
func (m *MemoryStore) Stats() MemoryStats {
	if m.closed.Load() || m.cache.Metrics == nil {
		return MemoryStats{}
	}
	mt := m.cache.Metrics
	return MemoryStats{
		Hits:        mt.Hits(),
		Misses:      mt.Misses(),
		HitRatio:    mt.Ratio(),
		KeysAdded:   mt.KeysAdded(),
		KeysEvicted: mt.KeysEvicted(),
		Pending:     m.pending.Len(),
	}
}

// Close 关闭存储，重复调用返回 ErrClosed
func (m *MemoryStore) Close() error {
	if !m.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	m.cache.Close()
	m.pending.Purge()
	return nil
}
