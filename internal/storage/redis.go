package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "dash:storage:v1:"

// RedisBackend keeps each browser's values in one Redis hash that expires
// after ttl without writes.
type RedisBackend struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis builds a Redis-backed storage backend. A non-positive ttl disables expiry.
func NewRedis(client *redis.Client, ttl time.Duration) *RedisBackend {
	return &RedisBackend{client: client, ttl: ttl}
}

// Scope returns the storage area of one browser.
func (b *RedisBackend) Scope(browserID string) Storage {
	return &redisScope{backend: b, id: browserID}
}

// Ping checks Redis connectivity.
func (b *RedisBackend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

type redisScope struct {
	backend *RedisBackend
	id      string
}

func (s *redisScope) key() string { return redisKeyPrefix + s.id }

func (s *redisScope) Get(ctx context.Context, key string) (string, bool, error) {
	if s.id == "" {
		return "", false, ErrEmptyBrowserID
	}
	value, err := s.backend.client.HGet(ctx, s.key(), key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis hget %s: %w", key, err)
	}
	return value, true, nil
}

func (s *redisScope) Set(ctx context.Context, key, value string) error {
	if s.id == "" {
		return ErrEmptyBrowserID
	}
	pipe := s.backend.client.TxPipeline()
	pipe.HSet(ctx, s.key(), key, value)
	if s.backend.ttl > 0 {
		pipe.Expire(ctx, s.key(), s.backend.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis hset %s: %w", key, err)
	}
	return nil
}

func (s *redisScope) Remove(ctx context.Context, keys ...string) error {
	if s.id == "" {
		return ErrEmptyBrowserID
	}
	if len(keys) == 0 {
		return nil
	}
	if err := s.backend.client.HDel(ctx, s.key(), keys...).Err(); err != nil {
		return fmt.Errorf("redis hdel: %w", err)
	}
	return nil
}
