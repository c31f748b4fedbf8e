package census

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"homebuyer-lead-engine/internal/models"
)

// DefaultTTL is how long area insights stay cached.
const DefaultTTL = 24 * time.Hour

// Cache stores insights by normalized location key. A miss is (nil, false, nil).
type Cache interface {
	Get(ctx context.Context, key string) (*models.CensusAreaInsights, bool, error)
	Set(ctx context.Context, key string, value *models.CensusAreaInsights) error
}

type memoryEntry struct {
	value     models.CensusAreaInsights
	expiresAt time.Time
}

// MemoryCache is a TTL map owned by whoever constructs it. Expired entries
// are dropped on read.
type MemoryCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

// NewMemoryCache creates a cache. A nil clock uses time.Now.
func NewMemoryCache(ttl time.Duration, clock func() time.Time) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if clock == nil {
		clock = time.Now
	}
	return &MemoryCache{
		ttl:     ttl,
		now:     clock,
		entries: make(map[string]memoryEntry),
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) (*models.CensusAreaInsights, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !c.now().Before(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false, nil
	}
	value := entry.value
	return &value, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value *models.CensusAreaInsights) error {
	if value == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = memoryEntry{value: *value, expiresAt: c.now().Add(c.ttl)}
	return nil
}

// Len returns the number of stored entries, expired or not.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// RedisCache shares insights across instances. Expiry is left to Redis.
type RedisCache struct {
	client redis.Cmdable
	ttl    time.Duration
	prefix string
}

// NewRedisCache creates a Redis-backed cache.
func NewRedisCache(client redis.Cmdable, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{client: client, ttl: ttl, prefix: "census:"}
}

func (c *RedisCache) Get(ctx context.Context, key string) (*models.CensusAreaInsights, bool, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}

	var insights models.CensusAreaInsights
	if err := json.Unmarshal([]byte(val), &insights); err != nil {
		return nil, false, fmt.Errorf("decode cached insights %s: %w", key, err)
	}
	return &insights, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value *models.CensusAreaInsights) error {
	if value == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode insights: %w", err)
	}
	if err := c.client.Set(ctx, c.prefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// HealthCheck pings Redis.
func (c *RedisCache) HealthCheck(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
