package redis

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wonny/ainavigator/backend/pkg/config"
)

const dialTimeout = 5 * time.Second

// Client is the process-wide Redis handle.
// When REDIS_ENABLED is false rdb is nil and every cache or limiter call is a no-op.
// ⭐ SSOT: Redis connections are created only here
type Client struct {
	rdb *redis.Client
}

// New connects and pings. A disabled config returns a usable no-op client.
func New(cfg *config.Config) (*Client, error) {
	if !cfg.Redis.Enabled {
		return &Client{}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:        net.JoinHostPort(cfg.Redis.Host, cfg.Redis.Port),
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		DialTimeout: dialTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", rdb.Options().Addr, err)
	}

	return &Client{rdb: rdb}, nil
}

// Close releases the connection pool
func (c *Client) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

// Enabled reports whether commands reach a server
func (c *Client) Enabled() bool {
	return c.rdb != nil
}

// Redis exposes the go-redis client for scripts and pipelines
func (c *Client) Redis() *redis.Client {
	return c.rdb
}
