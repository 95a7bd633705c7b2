package kv

import (
	"context"
	"sync"
	"time"
)

const defaultSweepInterval = time.Minute

// MemoryStore 进程内 TTL 键值存储
// 仅对单个进程有效，跨实例部署需换用 RedisStore（见 Store 注释）。
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry

	sweepInterval time.Duration
	stopOnce      sync.Once
	stopCh        chan struct{}
}

type memoryEntry struct {
	value     string
	count     int64
	expiresAt time.Time
}

// NewMemoryStore 创建进程内存储
func NewMemoryStore(sweepInterval time.Duration) *MemoryStore {
	if sweepInterval <= 0 {
		sweepInterval = defaultSweepInterval
	}
	return &MemoryStore{
		entries:       make(map[string]memoryEntry),
		sweepInterval: sweepInterval,
		stopCh:        make(chan struct{}),
	}
}

// StartSweeper 启动后台清理协程，定期丢弃过期条目以约束内存
func (s *MemoryStore) StartSweeper(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopCh:
				return
			case <-ticker.C:
				s.sweep(time.Now())
			}
		}
	}()
}

// Stop 停止后台清理
func (s *MemoryStore) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
}

// Set 写入键值并设置过期时间
func (s *MemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Get 读取未过期的键值
func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok || time.Now().After(entry.expiresAt) {
		delete(s.entries, key)
		return "", false, nil
	}
	return entry.value, true, nil
}

// GetDel 读取并删除键值
func (s *MemoryStore) GetDel(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok {
		return "", false, nil
	}
	delete(s.entries, key)
	if time.Now().After(entry.expiresAt) {
		return "", false, nil
	}
	return entry.value, true, nil
}

// Incr 自增计数器，键首次出现时以 window 开窗
func (s *MemoryStore) Incr(_ context.Context, key string, window time.Duration) (int64, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	entry, ok := s.entries[key]
	if !ok || now.After(entry.expiresAt) {
		entry = memoryEntry{
			count:     0,
			expiresAt: now.Add(window),
		}
	}
	entry.count++
	s.entries[key] = entry

	ttlSeconds := int64(entry.expiresAt.Sub(now).Seconds())
	if ttlSeconds < 1 {
		ttlSeconds = 1
	}
	return entry.count, ttlSeconds, nil
}

// Del 删除键
func (s *MemoryStore) Del(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *MemoryStore) sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, key)
		}
	}
}

// Len 返回当前条目数（测试用）
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
