package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"

	"github.com/sells-group/prospector/internal/model"
)

// RedisCache is the production cache backed by Redis with JSON values.
type RedisCache struct {
	client *redis.Client
}

// NewRedis creates a Redis-backed cache from a redis URL
// (redis://host:port/db).
func NewRedis(redisURL string) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, eris.Wrap(err, "cache: parse redis url")
	}
	return &RedisCache{client: redis.NewClient(opts)}, nil
}

// Get implements Cache.
func (c *RedisCache) Get(ctx context.Context, key string) ([]model.CompanyRecord, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrap(err, "cache: redis get")
	}

	var records []model.CompanyRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		// A corrupt entry is treated as a miss, not a failure.
		return nil, false, nil
	}
	return records, true, nil
}

// Set implements Cache.
func (c *RedisCache) Set(ctx context.Context, key string, records []model.CompanyRecord, ttl time.Duration) error {
	raw, err := json.Marshal(records)
	if err != nil {
		return eris.Wrap(err, "cache: marshal records")
	}
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return eris.Wrap(err, "cache: redis set")
	}
	return nil
}

// Close releases the underlying connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
