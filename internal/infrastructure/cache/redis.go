// Package cache provides the Redis client and the stores built on it.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/velux/backend/internal/domain/shared"
	"github.com/velux/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewRedisClient connects to Redis and verifies the connection with a ping.
// It returns nil, nil when Redis is disabled in configuration.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewIdempotencyStore returns a Redis store when a client is available and
// an in-memory store otherwise. The in-memory store does not share state
// across instances.
func NewIdempotencyStore(client *redis.Client, logger *zap.Logger) shared.IdempotencyStore {
	if client != nil {
		return NewRedisIdempotencyStore(client, "")
	}
	if logger != nil {
		logger.Warn("Redis unavailable, using in-memory idempotency store")
	}
	return NewInMemoryIdempotencyStore()
}
