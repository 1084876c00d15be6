package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/helpfast/helpdesk/internal/config"
)

// Redis wraps the go-redis client.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to Redis using the provided configuration.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.Error(err))
	} else {
		logger.Info("connected to redis")
	}

	return &Redis{Client: client}
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}

// StatusCache is a short-TTL read-through cache for ticket status polling.
// A nil receiver or missing client degrades to cache misses so the service
// keeps working without Redis.
type StatusCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStatusCache builds the cache on the shared Redis connection.
func NewStatusCache(r *Redis, ttl time.Duration) *StatusCache {
	if r == nil {
		return &StatusCache{ttl: ttl}
	}
	return &StatusCache{client: r.Client, ttl: ttl}
}

func statusKey(ticketID int64) string {
	return fmt.Sprintf("ticket:status:%d", ticketID)
}

// Get returns the cached status, or "" on miss or cache failure.
func (c *StatusCache) Get(ctx context.Context, ticketID int64) string {
	if c == nil || c.client == nil {
		return ""
	}
	val, err := c.client.Get(ctx, statusKey(ticketID)).Result()
	if err != nil {
		return ""
	}
	return val
}

// Set stores the status under the configured TTL; failures are ignored.
func (c *StatusCache) Set(ctx context.Context, ticketID int64, status string) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Set(ctx, statusKey(ticketID), status, c.ttl).Err()
}

// Invalidate drops the cached status after a committed transition.
func (c *StatusCache) Invalidate(ctx context.Context, ticketID int64) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Del(ctx, statusKey(ticketID)).Err()
}
