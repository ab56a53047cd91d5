package redis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wonny/jreit-finder/pkg/config"
)

// ErrDisabled is returned by Ping on a client built without redis
var ErrDisabled = errors.New("redis disabled")

const dialTimeout = 3 * time.Second

// Client wraps the Redis client; a disabled client turns every cache call into a no-op
// ⭐ SSOT: Redis 연결은 여기서만 관리
type Client struct {
	rdb *redis.Client
}

// New connects to redis when REDIS_ENABLED is set and returns a disabled client otherwise
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	if !cfg.Redis.Enabled {
		return Disabled(), nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:        net.JoinHostPort(cfg.Redis.Host, cfg.Redis.Port),
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		DialTimeout: dialTimeout,
	})

	c := &Client{rdb: rdb}
	if err := c.Ping(ctx); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis %s: %w", rdb.Options().Addr, err)
	}

	return c, nil
}

// NewFromRedis wraps an existing go-redis client; nil yields a disabled client
func NewFromRedis(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

// Disabled returns a client on which the cache and the limiter are no-ops
func Disabled() *Client {
	return &Client{}
}

// Ping checks the connection within dialTimeout
func (c *Client) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return ErrDisabled
	}

	ctx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	return c.rdb.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *Client) Close() error {
	if c.rdb != nil {
		return c.rdb.Close()
	}
	return nil
}

// Enabled reports whether commands reach a redis server
func (c *Client) Enabled() bool {
	return c != nil && c.rdb != nil
}

// Redis returns the underlying go-redis client (nil when disabled)
func (c *Client) Redis() *redis.Client {
	return c.rdb
}
