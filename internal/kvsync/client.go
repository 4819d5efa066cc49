package kvsync

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Op is one key write. Delete ops ignore Value.
type Op struct {
	Key    string
	Value  string
	Delete bool
}

// Client writes batches of operations to the KV target.
type Client interface {
	Apply(ctx context.Context, ops []Op) error
	Close() error
}

// RedisClient writes operations through a Redis pipeline.
type RedisClient struct {
	rdb     *redis.Client
	timeout time.Duration
}

// NewRedisClient connects to a redis://, rediss://, or unix:// URL. The
// connection is lazy; Ping verifies it.
func NewRedisClient(url string, timeout time.Duration) (*RedisClient, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if timeout > 0 {
		opts.ReadTimeout = timeout
		opts.WriteTimeout = timeout
	}
	return &RedisClient{rdb: redis.NewClient(opts), timeout: timeout}, nil
}

// Addr reports the server address the client targets.
func (c *RedisClient) Addr() string {
	return c.rdb.Options().Addr
}

// Ping checks connectivity.
func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis %s: %w", c.Addr(), err)
	}
	return nil
}

// Apply sends ops in one pipeline round trip.
func (c *RedisClient) Apply(ctx context.Context, ops []Op) error {
	if len(ops) == 0 {
		return nil
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	pipe := c.rdb.Pipeline()
	for _, op := range ops {
		if op.Delete {
			pipe.Del(ctx, op.Key)
			continue
		}
		pipe.Set(ctx, op.Key, op.Value, 0)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis pipeline: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (c *RedisClient) Close() error {
	return c.rdb.Close()
}
