package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/SumitJoshiGIT/distributed-task-runner/pkg/logging"
)

// Client wraps a go-redis client. Redis is optional at runtime: it backs the
// task event stream and the worker rate limiter when configured.
type Client struct {
	client *redis.Client
	logger logging.Logger
}

// NewClient creates a Redis client from a redis:// URL.
func NewClient(redisURL string, logger logging.Logger) (*Client, error) {
	if redisURL == "" {
		return nil, errors.New("redis URL is not set")
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	c := &Client{
		client: redis.NewClient(opt),
		logger: logger,
	}

	if err := c.CheckConnection(); err != nil {
		return nil, err
	}

	return c, nil
}

// CheckConnection tests the Redis connection
func (c *Client) CheckConnection() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := c.client.Ping(ctx).Result(); err != nil {
		c.logger.Errorf("Failed to connect to Redis: %v", err)
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	c.logger.Info("Successfully connected to Redis")
	return nil
}

// Get retrieves a value from Redis by key
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil // Key does not exist
	} else if err != nil {
		return "", err
	}
	return val, nil
}

// Set stores a key-value pair in Redis with an optional expiration
func (c *Client) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.client.Set(ctx, key, value, expiration).Err()
}

// Del removes keys from Redis
func (c *Client) Del(ctx context.Context, keys ...string) error {
	return c.client.Del(ctx, keys...).Err()
}

// Incr increments the given key
func (c *Client) Incr(ctx context.Context, key string) (int64, error) {
	return c.client.Incr(ctx, key).Result()
}

// Expire sets an expiration time on key
func (c *Client) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return c.client.Expire(ctx, key, expiration).Err()
}

// TTL returns the remaining time to live of a key
func (c *Client) TTL(ctx context.Context, key string) (time.Duration, error) {
	return c.client.TTL(ctx, key).Result()
}

// Eval executes a Lua script
func (c *Client) Eval(ctx context.Context, script string, keys []string, args ...interface{}) (interface{}, error) {
	return c.client.Eval(ctx, script, keys, args...).Result()
}

// XAdd appends an entry to a stream, trimming it to a bounded length.
func (c *Client) XAdd(ctx context.Context, stream string, values map[string]interface{}) (string, error) {
	return c.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		MaxLen: 10000,
		Approx: true,
		Values: values,
	}).Result()
}

// Client returns the underlying Redis client if direct access is needed
func (c *Client) Client() *redis.Client {
	return c.client
}

// Close closes the Redis client connection
func (c *Client) Close() error {
	return c.client.Close()
}
