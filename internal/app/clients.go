package app

import (
	"fmt"
	"net/http"
	"time"

	goredis "github.com/redis/go-redis/v9"

	redisclient "github.com/yungbote/rateio-sync-backend/internal/clients/redis"
	"github.com/yungbote/rateio-sync-backend/internal/platform/logger"
	"github.com/yungbote/rateio-sync-backend/internal/platform/sheets"
)

type Clients struct {
	HTTP *http.Client
	// Redis is nil when REDIS_ADDR is unset.
	Redis      *goredis.Client
	TokenCache sheets.TokenCache
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	out := Clients{HTTP: &http.Client{Timeout: 30 * time.Second}}
	if cfg.Redis.Addr == "" {
		log.Info("redis not configured; google tokens are exchanged per read")
		return out, nil
	}
	rdb, err := redisclient.NewClient(log, cfg.Redis)
	if err != nil {
		return Clients{}, fmt.Errorf("redis: %w", err)
	}
	out.Redis = rdb
	out.TokenCache = sheets.NewRedisTokenCache(rdb, cfg.RedisPrefix)
	return out, nil
}

func (c Clients) Close() {
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
