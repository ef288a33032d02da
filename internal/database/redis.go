package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/ascent-backend/internal/config"
)

// NewRedisClient creates the Redis client used for the catalog cache, the
// login registry, rate limiting and the expeditions pub/sub channel.
func NewRedisClient(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	// Each admin stream holds a pub/sub connection outside the pool.
	opt.PoolSize = max(opt.PoolSize, int(cfg.MaxDBConns))
	opt.ClientName = "ascent-backend"

	rdb := redis.NewClient(opt)

	err = retry(ctx, cfg.ConnectRetries, cfg.ConnectRetryDelay, log, "ping redis", func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return rdb.Ping(pingCtx).Err()
	})
	if err != nil {
		_ = rdb.Close()
		return nil, err
	}

	log.Info().
		Str("addr", opt.Addr).
		Int("db", opt.DB).
		Int("pool_size", opt.PoolSize).
		Msg("Redis connected")

	return rdb, nil
}
