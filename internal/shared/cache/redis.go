package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"familyhub-api/internal/shared/logger"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds the connection settings for the Redis-backed cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisCache is a DocumentCache backed by Redis, shared across API replicas.
// Documents are stored JSON-encoded; any Redis or codec failure degrades to
// a cache miss.
type RedisCache struct {
	client *redis.Client
	log    logger.Logger
}

// NewRedisCache connects to Redis and pings it before returning, so a
// misconfigured address fails at startup rather than on first request.
func NewRedisCache(ctx context.Context, cfg RedisConfig, log logger.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,

		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &RedisCache{
		client: client,
		log:    log.WithComponent("redis-cache"),
	}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) (map[string]interface{}, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.WithFields(map[string]interface{}{"key": key, "error": err.Error()}).
				Warn("cache read failed")
		}
		return nil, false
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		c.log.WithFields(map[string]interface{}{"key": key, "error": err.Error()}).
			Warn("cached document undecodable, evicting")
		c.Delete(ctx, key)
		return nil, false
	}
	return doc, true
}

func (c *RedisCache) Set(ctx context.Context, key string, doc map[string]interface{}, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		c.log.WithFields(map[string]interface{}{"key": key, "error": err.Error()}).
			Warn("document not cacheable")
		return
	}
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		c.log.WithFields(map[string]interface{}{"key": key, "error": err.Error()}).
			Warn("cache write failed")
	}
}

func (c *RedisCache) Delete(ctx context.Context, key string) {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.log.WithFields(map[string]interface{}{"key": key, "error": err.Error()}).
			Warn("cache invalidation failed")
	}
}

// Close releases the underlying Redis connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
