package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestRedisViewCacheKey(t *testing.T) {
	c := NewRedisViewCache(nil, "admin", time.Minute)
	assert.Equal(t, "admin:floorplan:view", c.key)

	c = NewRedisViewCache(nil, "", time.Minute)
	assert.Equal(t, FloorPlanViewKey, c.key)
}

func TestRedisViewCacheMissWhenUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	c := NewRedisViewCache(client, "", time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	b, ok := c.Get(ctx)
	assert.False(t, ok)
	assert.Nil(t, b)
	assert.Error(t, c.Set(ctx, []byte("{}")))
}
