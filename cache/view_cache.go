package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const FloorPlanViewKey = "floorplan:view"

// ViewCache stores the rendered floor plan between mutations.
type ViewCache interface {
	Get(ctx context.Context) ([]byte, bool)
	Set(ctx context.Context, view []byte) error
	Invalidate(ctx context.Context) error
}

type RedisViewCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewRedisViewCache(client *redis.Client, prefix string, ttl time.Duration) *RedisViewCache {
	key := FloorPlanViewKey
	if prefix != "" {
		key = prefix + ":" + key
	}
	return &RedisViewCache{client: client, key: key, ttl: ttl}
}

// Get reports a miss on any Redis error so a cache outage only costs a render.
func (c *RedisViewCache) Get(ctx context.Context) ([]byte, bool) {
	b, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		return nil, false
	}
	return b, true
}

func (c *RedisViewCache) Set(ctx context.Context, view []byte) error {
	return c.client.Set(ctx, c.key, view, c.ttl).Err()
}

func (c *RedisViewCache) Invalidate(ctx context.Context) error {
	err := c.client.Del(ctx, c.key).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}
