package infra

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Connections holds the optional shared clients. Either field may be nil
// when its URL is not configured.
type Connections struct {
	DB    *pgxpool.Pool
	Cache *redis.Client
}

// Open connects to every store that has a URL and verifies connectivity.
// On failure anything already opened is closed again.
func Open(ctx context.Context, databaseURL, redisURL string) (*Connections, error) {
	conns := &Connections{}
	if databaseURL != "" {
		db, err := NewPostgresPool(ctx, databaseURL)
		if err != nil {
			return nil, err
		}
		conns.DB = db
	}
	if redisURL != "" {
		cache, err := NewRedisClient(ctx, redisURL)
		if err != nil {
			conns.Close()
			return nil, err
		}
		conns.Cache = cache
	}
	return conns, nil
}

// Close releases every open client.
func (c *Connections) Close() error {
	var errs []error
	if c.DB != nil {
		c.DB.Close()
	}
	if c.Cache != nil {
		if err := c.Cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	return errors.Join(errs...)
}

// NewPostgresPool configures a PostgreSQL pool and pings it.
func NewPostgresPool(ctx context.Context, url string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// NewRedisClient configures a Redis client and pings it.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
