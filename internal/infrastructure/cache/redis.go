package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/DeMaestro5/Khronos-api-sub001/pkg/config"
	"github.com/go-redis/redis/v8"
)

// Custom error types
var (
	ErrCacheNotFound   = errors.New("cache: key not found")
	ErrCacheConnection = errors.New("cache: connection error")
	ErrInvalidConfig   = errors.New("cache: invalid configuration")
)

// Config holds the configuration for the Redis client
type Config struct {
	Addr             string
	Password         string
	DB               int
	PoolSize         int
	MinIdleConns     int
	MaxRetries       int
	ConnTimeout      time.Duration
	OperationTimeout time.Duration
	DefaultTTL       time.Duration
	KeyPrefix        string
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		PoolSize:         100,
		MinIdleConns:     10,
		MaxRetries:       3,
		ConnTimeout:      5 * time.Second,
		OperationTimeout: 2 * time.Second,
		DefaultTTL:       30 * time.Minute,
		KeyPrefix:        "khronos:",
	}
}

// NewConfigFromEnv builds a cache config from the application configuration,
// keeping the defaults for pool sizing and timeouts.
func NewConfigFromEnv(cfg *config.Config) *Config {
	c := DefaultConfig()
	c.Addr = fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
	c.Password = cfg.Redis.Password
	c.DB = cfg.Redis.DB
	return c
}

// Metrics tracks cache hit/miss counts with atomic operations.
type Metrics struct {
	hits   atomic.Int64
	misses atomic.Int64
}

// Snapshot returns the current hit/miss counts.
func (m *Metrics) Snapshot() (hits, misses int64) {
	return m.hits.Load(), m.misses.Load()
}

// RedisClient wraps the Redis client with JSON helpers and metrics.
type RedisClient struct {
	client    *redis.Client
	config    *Config
	metrics   *Metrics
	closeOnce sync.Once
}

// NewRedisClient creates a new Redis client with the provided configuration
func NewRedisClient(cfg *Config) (*RedisClient, error) {
	if cfg == nil || cfg.Addr == "" {
		return nil, ErrInvalidConfig
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.ConnTimeout,
		ReadTimeout:  cfg.OperationTimeout,
		WriteTimeout: cfg.OperationTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCacheConnection, err)
	}

	return &RedisClient{
		client:  client,
		config:  cfg,
		metrics: &Metrics{},
	}, nil
}

func (r *RedisClient) key(k string) string {
	return r.config.KeyPrefix + k
}

// GetJSON fetches a key and unmarshals it into dest. Returns
// ErrCacheNotFound on a miss.
func (r *RedisClient) GetJSON(ctx context.Context, key string, dest interface{}) error {
	payload, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		r.metrics.misses.Add(1)
		return ErrCacheNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCacheConnection, err)
	}
	r.metrics.hits.Add(1)
	return json.Unmarshal(payload, dest)
}

// SetJSON marshals value and stores it under key. A zero TTL falls back to
// the configured default.
func (r *RedisClient) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: marshal value for %q: %w", key, err)
	}
	if ttl <= 0 {
		ttl = r.config.DefaultTTL
	}
	return r.client.Set(ctx, r.key(key), payload, ttl).Err()
}

// Delete removes a key.
func (r *RedisClient) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

// HealthCheck verifies connectivity.
func (r *RedisClient) HealthCheck(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheConnection, err)
	}
	return nil
}

// GetMetrics returns the hit/miss counters as a map for health endpoints.
func (r *RedisClient) GetMetrics() map[string]int64 {
	hits, misses := r.metrics.Snapshot()
	return map[string]int64{"hits": hits, "misses": misses}
}

// GetClient exposes the underlying client for components that need raw
// Redis access, such as the rate limiter.
func (r *RedisClient) GetClient() *redis.Client {
	return r.client
}

// Close shuts the client down once.
func (r *RedisClient) Close() error {
	var err error
	r.closeOnce.Do(func() {
		err = r.client.Close()
	})
	return err
}
