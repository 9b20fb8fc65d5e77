package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces the pub/sub channels.
const DefaultRedisPrefix = "planner"

// NewRedisClient connects to Redis from a redis:// URL and pings it.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	opts.MaxRetries = 3
	opts.MinRetryBackoff = 100 * time.Millisecond
	opts.MaxRetryBackoff = time.Second
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}

// RedisPublisher publishes events on a per-tenant Redis pub/sub channel, where
// the real-time gateway pushes them to connected devices.
type RedisPublisher struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisPublisher creates a RedisPublisher. An empty prefix uses DefaultRedisPrefix.
func NewRedisPublisher(client redis.UniversalClient, prefix string) *RedisPublisher {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisPublisher{client: client, prefix: prefix}
}

// Channel returns the pub/sub channel of a tenant.
func (p *RedisPublisher) Channel(tenantID string) string {
	return fmt.Sprintf("%s:tenant:%s:tasks", p.prefix, tenantID)
}

// PublishTasksChanged publishes the JSON encoded event.
func (p *RedisPublisher) PublishTasksChanged(ctx context.Context, event TasksChanged) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := p.client.Publish(ctx, p.Channel(event.TenantID), body).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}
