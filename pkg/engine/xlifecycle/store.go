package xlifecycle

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/omeyang/xserve/pkg/storage/xcache"
)

// OpenStore 按配置打开缓存存储。驱动为 none 时返回 (nil, nil)。
func OpenStore(cfg CacheConfig) (xcache.Store, error) {
	switch cfg.Driver {
	case "", CacheNone:
		return nil, nil
	case CacheMemory:
		opts := []xcache.MemoryOption{
			xcache.WithMemoryTTL(cfg.TTL),
			xcache.WithPendingTTL(cfg.PendingTTL),
		}
		if cfg.MemoryMaxCost > 0 {
			opts = append(opts, xcache.WithMemoryMaxCost(cfg.MemoryMaxCost))
		}
		if cfg.PendingSize > 0 {
			opts = append(opts, xcache.WithPendingSize(cfg.PendingSize))
		}
		store, err := xcache.NewMemory(opts...)
		if err != nil {
			return nil, err
		}
		return store, nil
	case CacheRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		store, err := xcache.NewRedis(client,
			xcache.WithPrefix(cfg.RedisPrefix),
			xcache.WithTTL(cfg.TTL),
			xcache.WithRedisPendingTTL(cfg.PendingTTL))
		if err != nil {
			_ = client.Close()
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCacheDriver, cfg.Driver)
	}
}
