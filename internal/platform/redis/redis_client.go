// Package redis builds the Redis client used by the read-through cache.
package redis

import (
	"context"
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"user_backend/internal/platform/config"
)

// ErrRedisDisabled is returned when no Redis address is configured.
var ErrRedisDisabled = errors.New("redis disabled: no address configured")

// NewRedisClient creates a client from cfg and verifies it with PING.
// The client is closed when the ping fails.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, ErrRedisDisabled
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// 接続確認
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Error("Redis connection failed", "address", cfg.Addr, "error", err)
		_ = rdb.Close()
		return nil, err
	}

	slog.Info("Redis connection successful", "address", cfg.Addr)
	return rdb, nil
}
