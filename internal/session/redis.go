// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package session

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"

	"github.com/postline/postline/internal/store"
)

// RedisConfig addresses the Redis server holding sessions.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// ConnectRedis creates a client and waits up to timeout for it to answer PING.
func ConnectRedis(ctx context.Context, cfg RedisConfig, timeout time.Duration) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, oops.Code("REDIS_CONFIG_INVALID").Errorf("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ping := func(ctx context.Context) error { return client.Ping(ctx).Err() }
	if err := store.WaitFor(ctx, "redis", timeout, ping); err != nil {
		_ = client.Close() //nolint:errcheck // connect error takes precedence
		return nil, oops.Code("REDIS_CONNECT_FAILED").
			With("addr", cfg.Addr).
			With("timeout", timeout.String()).
			Wrap(err)
	}
	return client, nil
}
