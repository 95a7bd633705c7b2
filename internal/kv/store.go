package kv

import (
	"context"
	"time"
)

// Store 带 TTL 语义的键值存储抽象
// 进程内实现用于单节点部署，Redis 实现用于多实例共享；启动时二选一注入。
type Store interface {
	// Set 写入键值并设置过期时间，覆盖同键旧值
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Get 读取未过期的键值
	Get(ctx context.Context, key string) (string, bool, error)
	// GetDel 读取并删除键值（一次性消费）
	GetDel(ctx context.Context, key string) (string, bool, error)
	// Incr 自增计数器；键首次出现时以 window 开窗，返回当前计数与剩余秒数
	Incr(ctx context.Context, key string, window time.Duration) (count int64, ttlSeconds int64, err error)
	// Del 删除键
	Del(ctx context.Context, key string) error
}
