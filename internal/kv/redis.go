package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// incrWindowScript 原子自增并在首次写入时开窗，返回当前计数与剩余秒数
var incrWindowScript = redis.NewScript(`
local current = redis.call('INCR', KEYS[1])
if current == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('TTL', KEYS[1])
return {current, ttl}
`)

// RedisStore 基于 Redis 的键值存储，多实例部署时共享状态
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore 创建 Redis 存储
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "vx"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) buildKey(key string) string {
	return fmt.Sprintf("%s:%s", s.prefix, key)
}

// Set 写入键值并设置过期时间
func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, s.buildKey(key), value, ttl).Err()
}

// Get 读取键值
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, s.buildKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// GetDel 读取并删除键值
func (s *RedisStore) GetDel(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.GetDel(ctx, s.buildKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// Incr 自增计数器，键首次出现时以 window 开窗
func (s *RedisStore) Incr(ctx context.Context, key string, window time.Duration) (int64, int64, error) {
	windowSeconds := int64(window.Seconds())
	if windowSeconds < 1 {
		windowSeconds = 1
	}
	result, err := incrWindowScript.Run(ctx, s.client, []string{s.buildKey(key)}, windowSeconds).Result()
	if err != nil {
		return 0, 0, err
	}
	values, ok := result.([]interface{})
	if !ok || len(values) != 2 {
		return 0, 0, fmt.Errorf("unexpected incr script result: %v", result)
	}
	count, _ := values[0].(int64)
	ttl, _ := values[1].(int64)
	if ttl < 1 {
		ttl = windowSeconds
	}
	return count, ttl, nil
}

// Del 删除键
func (s *RedisStore) Del(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.buildKey(key)).Err()
}
