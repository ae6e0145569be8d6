package xcache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
)

// RedisOptions Redis 存储配置
type RedisOptions struct {
	// Prefix 所有 key 的前缀，默认 "xserve:"
	Prefix string
	// TTL 响应缓存 TTL，0 表示不过期
	TTL time.Duration
	// PendingTTL 待完成请求 TTL，默认 24h
	PendingTTL time.Duration
	// BreakerFailures 连续失败多少次后熔断，默认 5
	BreakerFailures uint32
	// BreakerTimeout 熔断打开后多久进入半开，默认 30s
	BreakerTimeout time.Duration
	// OnStateChange 熔断器状态变化回调
	OnStateChange func(name string, from, to gobreaker.State)
}

// RedisOption 配置 Redis 存储
type RedisOption func(*RedisOptions)

func defaultRedisOptions() *RedisOptions {
	return &RedisOptions{
		Prefix:          "xserve:",
		PendingTTL:      24 * time.Hour,
		BreakerFailures: 5,
		BreakerTimeout:  30 * time.Second,
	}
}

// WithPrefix 设置 key 前缀
func WithPrefix(prefix string) RedisOption {
	return func(o *RedisOptions) { o.Prefix = prefix }
}

// WithTTL 设置响应缓存 TTL
func WithTTL(ttl time.Duration) RedisOption {
	return func(o *RedisOptions) {
		if ttl >= 0 {
			o.TTL = ttl
		}
	}
}

// WithRedisPendingTTL 设置待完成请求 TTL
func WithRedisPendingTTL(ttl time.Duration) RedisOption {
	return func(o *RedisOptions) {
		if ttl >= 0 {
			o.PendingTTL = ttl
		}
	}
}

// WithBreaker 设置熔断阈值与恢复时间，0 值忽略
func WithBreaker(failures uint32, timeout time.Duration) RedisOption {
	return func(o *RedisOptions) {
		if failures > 0 {
			o.BreakerFailures = failures
		}
		if timeout > 0 {
			o.BreakerTimeout = timeout
		}
	}
}

// WithBreakerStateChange 设置熔断器状态变化回调
func WithBreakerStateChange(fn func(name string, from, to gobreaker.State)) RedisOption {
	return func(o *RedisOptions) { o.OnStateChange = fn }
}

// RedisStore 基于 Redis 的存储
type RedisStore struct {
	client redis.UniversalClient
	cb     *gobreaker.CircuitBreaker[[]byte]
	opts   RedisOptions
	closed atomic.Bool
}

// NewRedis 创建 Redis 存储。Close 会关闭 client。
func NewRedis(client redis.UniversalClient, opts ...RedisOption) (*RedisStore, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	o := defaultRedisOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	threshold := o.BreakerFailures
	st := gobreaker.Settings{
		Name:    "xcache-redis",
		Timeout: o.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: o.OnStateChange,
	}
	return &RedisStore{
		client: client,
		cb:     gobreaker.NewCircuitBreaker[[]byte](st),
		opts:   *o,
	}, nil
}

func (r *RedisStore) responseKey(key string) string { return r.opts.Prefix + "resp:" + key }
func (r *RedisStore) pendingKey(id string) string   { return r.opts.Prefix + "pending:" + id }

// execute 通过熔断器执行，熔断打开时返回 ErrUnavailable
func (r *RedisStore) execute(fn func() ([]byte, error)) ([]byte, error) {
	v, err := r.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return v, err
}

func (r *RedisStore) get(ctx context.Context, key string) ([]byte, bool, error) {
	if r.closed.Load() {
		return nil, false, ErrClosed
	}
	found := false
	v, err := r.execute(func() ([]byte, error) {
		b, err := r.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			// 未命中不是后端故障
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		found = true
		return b, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v, found, nil
}

func (r *RedisStore) set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if r.closed.Load() {
		return ErrClosed
	}
	_, err := r.execute(func() ([]byte, error) {
		return nil, r.client.Set(ctx, key, value, ttl).Err()
	})
	return err
}

// Get 实现 Store
func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, ErrEmptyKey
	}
	return r.get(ctx, r.responseKey(key))
}

// Put 实现 Store
func (r *RedisStore) Put(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return ErrEmptyKey
	}
	return r.set(ctx, r.responseKey(key), value, r.opts.TTL)
}

// GetPendingRequest 实现 Store
func (r *RedisStore) GetPendingRequest(ctx context.Context, id string) ([]byte, bool, error) {
	if id == "" {
		return nil, false, ErrEmptyKey
	}
	return r.get(ctx, r.pendingKey(id))
}

// PutPendingRequest 实现 Store
func (r *RedisStore) PutPendingRequest(ctx context.Context, id string, snapshot []byte) error {
	if id == "" {
		return ErrEmptyKey
	}
	return r.set(ctx, r.pendingKey(id), snapshot, r.opts.PendingTTL)
}

// BreakerState 返回熔断器当前状态
func (r *RedisStore) BreakerState() gobreaker.State {
	return r.cb.State()
}

// Client 返回底层客户端
func (r *RedisStore) Client() redis.UniversalClient {
	return r.client
}

// Close 关闭存储与底层客户端，重复调用返回 ErrClosed
func (r *RedisStore) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	return r.client.Close()
}
