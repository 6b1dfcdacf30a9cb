package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ===============================
// CACHE INTERFACE
// ===============================

// Cache defines the caching interface shared by the memory and Redis
// providers.
type Cache interface {
	Get(ctx context.Context, key string) (interface{}, bool)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) bool
	Clear(ctx context.Context) error
	Health(ctx context.Context) error
	Close() error
}

// Config holds cache configuration
type Config struct {
	Provider        string        `json:"provider"` // "memory", "redis"
	TTL             time.Duration `json:"ttl"`
	MaxKeys         int           `json:"max_keys"`
	CleanupInterval time.Duration `json:"cleanup_interval"`
	RedisURL        string        `json:"redis_url"`
	RedisPrefix     string        `json:"redis_prefix"`
}

// DefaultConfig returns default cache configuration
func DefaultConfig() *Config {
	return &Config{
		Provider:        "memory",
		TTL:             15 * time.Minute,
		MaxKeys:         10000,
		CleanupInterval: 5 * time.Minute,
		RedisPrefix:     "badgehub",
	}
}

// New creates the configured cache provider.
func New(config *Config, logger *zap.Logger) (Cache, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case "redis":
		return NewRedisCache(config, logger)
	case "", "memory":
		return NewMemoryCache(config, logger), nil
	default:
		return nil, fmt.Errorf("unknown cache provider %q", config.Provider)
	}
}

// ===============================
// MEMORY CACHE IMPLEMENTATION
// ===============================

// memoryCache implements Cache using in-memory storage
type memoryCache struct {
	mu      sync.RWMutex
	items   map[string]*cacheItem
	maxKeys int
	logger  *zap.Logger
	stopCh  chan struct{}
	once    sync.Once
}

// cacheItem represents a cached item
type cacheItem struct {
	Value      interface{}
	ExpiresAt  time.Time
	AccessedAt time.Time
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache(config *Config, logger *zap.Logger) Cache {
	c := &memoryCache{
		items:   make(map[string]*cacheItem),
		maxKeys: config.MaxKeys,
		logger:  logger,
		stopCh:  make(chan struct{}),
	}

	go c.cleanupLoop(config.CleanupInterval)

	return c
}

// Get retrieves a value from the cache
func (c *memoryCache) Get(ctx context.Context, key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, exists := c.items[key]
	if !exists {
		return nil, false
	}

	if time.Now().After(item.ExpiresAt) {
		delete(c.items, key)
		return nil, false
	}

	item.AccessedAt = time.Now()
	return item.Value, true
}

// Set stores a value in the cache
func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.items) >= c.maxKeys {
		c.evictOldest()
	}

	now := time.Now()
	c.items[key] = &cacheItem{
		Value:      value,
		ExpiresAt:  now.Add(ttl),
		AccessedAt: now,
	}

	return nil
}

// Delete removes a value from the cache
func (c *memoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}

// Exists checks if a key exists in the cache
func (c *memoryCache) Exists(ctx context.Context, key string) bool {
	_, found := c.Get(ctx, key)
	return found
}

// Clear removes all values from the cache
func (c *memoryCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*cacheItem)
	return nil
}

// Health always succeeds for the in-process provider.
func (c *memoryCache) Health(ctx context.Context) error { return nil }

// Close stops the cleanup goroutine.
func (c *memoryCache) Close() error {
	c.once.Do(func() { close(c.stopCh) })
	return nil
}

// evictOldest drops the least recently accessed entry. Callers hold the lock.
func (c *memoryCache) evictOldest() {
	var oldestKey string
	var oldestAccess time.Time
	for key, item := range c.items {
		if oldestKey == "" || item.AccessedAt.Before(oldestAccess) {
			oldestKey = key
			oldestAccess = item.AccessedAt
		}
	}
	if oldestKey != "" {
		delete(c.items, oldestKey)
	}
}

// cleanupLoop periodically drops expired entries.
func (c *memoryCache) cleanupLoop(interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			c.mu.Lock()
			for key, item := range c.items {
				if now.After(item.ExpiresAt) {
					delete(c.items, key)
				}
			}
			c.mu.Unlock()
		case <-c.stopCh:
			return
		}
	}
}

// ===============================
// REDIS CACHE IMPLEMENTATION
// ===============================

// redisCache implements Cache using Redis. Values are stored as JSON, so
// cross-process reads come back as decoded JSON values, not the original Go
// types.
type redisCache struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

// NewRedisCache creates a new Redis-backed cache
func NewRedisCache(config *Config, logger *zap.Logger) (Cache, error) {
	opts, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &redisCache{
		client: client,
		prefix: config.RedisPrefix,
		logger: logger,
	}, nil
}

func (c *redisCache) key(key string) string {
	if c.prefix == "" {
		return key
	}
	return c.prefix + ":" + key
}

// Get retrieves a value from Redis
func (c *redisCache) Get(ctx context.Context, key string) (interface{}, bool) {
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("Redis get failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var value interface{}
	if err := json.Unmarshal(data, &value); err != nil {
		c.logger.Warn("Failed to decode cached value", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	return value, true
}

// Set stores a value in Redis
func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache value: %w", err)
	}
	return c.client.Set(ctx, c.key(key), data, ttl).Err()
}

// Delete removes a value from Redis
func (c *redisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.key(key)).Err()
}

// Exists checks if a key exists in Redis
func (c *redisCache) Exists(ctx context.Context, key string) bool {
	n, err := c.client.Exists(ctx, c.key(key)).Result()
	return err == nil && n > 0
}

// Clear removes all values under the cache prefix
func (c *redisCache) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.key("*"), 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// Health pings Redis
func (c *redisCache) Health(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client
func (c *redisCache) Close() error {
	return c.client.Close()
}
