package xcache

import (
	"context"
	"io"
)

// Store 响应缓存与待完成请求存储。实现必须并发安全。
//
// Get 与 GetPendingRequest 在未命中时返回 (nil, false, nil)。
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error

	GetPendingRequest(ctx context.Context, id string) ([]byte, bool, error)
	PutPendingRequest(ctx context.Context, id string, snapshot []byte) error

	io.Closer
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*RedisStore)(nil)
)
