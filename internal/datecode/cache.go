package datecode

import (
	"context"
	"sync"
	"time"

	"github.com/angelmondragon/sourcing-engine/pkg/enums"
	"github.com/angelmondragon/sourcing-engine/pkg/redis"
)

// MemoryCache is the in-process cache used when no redis is configured.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]enums.DateCodeStatus
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]enums.DateCodeStatus)}
}

func (m *MemoryCache) Get(_ context.Context, rawDateCode string) (enums.DateCodeStatus, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	status, ok := m.entries[rawDateCode]
	return status, ok
}

func (m *MemoryCache) Set(_ context.Context, rawDateCode string, status enums.DateCodeStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[rawDateCode] = status
}

const redisCacheTTL = 24 * time.Hour

// RedisCache shares classification results across runs. A short TTL bounds
// staleness since status depends on the current year.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (r *RedisCache) Get(ctx context.Context, rawDateCode string) (enums.DateCodeStatus, bool) {
	value, err := r.client.Get(ctx, r.client.DateCodeKey(rawDateCode))
	if err != nil {
		return "", false
	}
	status, err := enums.ParseDateCodeStatus(value)
	if err != nil {
		return "", false
	}
	return status, true
}

func (r *RedisCache) Set(ctx context.Context, rawDateCode string, status enums.DateCodeStatus) {
	// cache write failures are invisible to classification
	_ = r.client.Set(ctx, r.client.DateCodeKey(rawDateCode), string(status), redisCacheTTL)
}
