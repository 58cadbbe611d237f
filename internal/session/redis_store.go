// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
)

// DefaultKeyPrefix namespaces session keys in Redis.
const DefaultKeyPrefix = "sess:"

// RedisStore is a Store backed by Redis string keys with a TTL.
type RedisStore struct {
	client   redis.Cmdable
	prefix   string
	touchTTL time.Duration
	logger   *slog.Logger
}

var _ Store = (*RedisStore)(nil)

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithKeyPrefix overrides DefaultKeyPrefix.
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) { s.prefix = prefix }
}

// WithTouch makes every read extend the entry's expiry to ttl. Without it an
// entry expires ttl after its last write regardless of reads.
func WithTouch(ttl time.Duration) RedisOption {
	return func(s *RedisStore) { s.touchTTL = ttl }
}

// WithRedisLogger sets the logger. Defaults to slog.Default().
func WithRedisLogger(logger *slog.Logger) RedisOption {
	return func(s *RedisStore) { s.logger = logger }
}

// NewRedisStore creates a RedisStore on client.
func NewRedisStore(client redis.Cmdable, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, prefix: DefaultKeyPrefix, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the Redis key holding token's payload.
func (s *RedisStore) Key(token string) string {
	return s.prefix + hashToken(token)
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, token string) (Payload, bool, error) {
	key := s.Key(token)

	var cmd *redis.StringCmd
	if s.touchTTL > 0 {
		cmd = s.client.GetEx(ctx, key, s.touchTTL)
	} else {
		cmd = s.client.Get(ctx, key)
	}

	data, err := cmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return Payload{}, false, nil
	}
	if err != nil {
		return Payload{}, false, oops.Code("SESSION_STORE_UNAVAILABLE").
			With("operation", "get session").
			Wrap(err)
	}

	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		s.logger.WarnContext(ctx, "discarding corrupt session payload", "error", err)
		return Payload{}, false, nil
	}
	return p, true, nil
}

// Set implements Store.
func (s *RedisStore) Set(ctx context.Context, token string, payload Payload, ttl time.Duration) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return oops.Code("SESSION_ENCODE_FAILED").Wrap(err)
	}
	if err := s.client.Set(ctx, s.Key(token), data, ttl).Err(); err != nil {
		return oops.Code("SESSION_STORE_UNAVAILABLE").
			With("operation", "set session").
			Wrap(err)
	}
	return nil
}

// Delete implements Store.
func (s *RedisStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, s.Key(token)).Err(); err != nil {
		return oops.Code("SESSION_STORE_UNAVAILABLE").
			With("operation", "delete session").
			Wrap(err)
	}
	return nil
}
