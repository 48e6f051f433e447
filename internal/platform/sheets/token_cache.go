package sheets

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// TokenCache holds exchanged bearer tokens between requests. Only OAuth tokens go here;
// planilha and hub data are always fetched fresh.
type TokenCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, token string, ttl time.Duration) error
}

type redisTokenCache struct {
	rdb    goredis.Cmdable
	prefix string
}

func NewRedisTokenCache(rdb goredis.Cmdable, prefix string) TokenCache {
	if prefix == "" {
		prefix = "rateio:"
	}
	return &redisTokenCache{rdb: rdb, prefix: prefix}
}

func (c *redisTokenCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.rdb.Get(ctx, c.prefix+key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, val != "", nil
}

func (c *redisTokenCache) Set(ctx context.Context, key, token string, ttl time.Duration) error {
	return c.rdb.Set(ctx, c.prefix+key, token, ttl).Err()
}
