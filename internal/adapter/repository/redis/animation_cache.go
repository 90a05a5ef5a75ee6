package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

type AnimationCache struct {
	client redis.Cmdable
	prefix string
}

func NewAnimationCache(client redis.Cmdable, prefix string) *AnimationCache {
	if prefix == "" {
		prefix = DefaultPrefix
	}

	return &AnimationCache{client: client, prefix: prefix + ":cache:"}
}

func (c *AnimationCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return raw, true, nil
}

func (c *AnimationCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, c.prefix+key, value, ttl).Err()
}

func (c *AnimationCache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.prefix + k
	}

	return c.client.Del(ctx, full...).Err()
}
