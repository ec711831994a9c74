// Package redis owns the shared Redis connection backing the voting score
// projection. The rest of the app treats a nil *Client as "cache disabled"
// and falls back to recomputing scores from vote rows.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"discussly/internal/platform/config"
)

// Client wraps go-redis so callers get a health probe without importing the
// driver themselves.
type Client struct {
	*redis.Client
}

// New dials Redis from cfg. An empty URL means Redis is not configured; the
// returned client is nil and no error is raised.
func New(cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	client := redis.NewClient(opts)

	// Fail startup, not the first vote, when the cache is unreachable.
	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Client{Client: client}, nil
}

// Health reports whether the connection still answers.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

// Close releases the underlying pool.
func (c *Client) Close() error {
	return c.Client.Close()
}
