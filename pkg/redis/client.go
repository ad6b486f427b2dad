package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var client *redis.Client

// ErrNotInitialized is returned when a helper is used before Init or SetClient.
var ErrNotInitialized = errors.New("redis client not initialized")

var pingClient = func(ctx context.Context, c *redis.Client) error {
	return c.Ping(ctx).Err()
}

// Init parses the connection URL and verifies the server answers a PING.
func Init(url, password string) error {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return err
	}

	if password != "" {
		opts.Password = password
	}

	c := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := pingClient(ctx, c); err != nil {
		_ = c.Close()
		return err
	}

	client = c
	return nil
}

// SetClient sets the Redis client (used for testing)
func SetClient(c *redis.Client) {
	client = c
}

// GetClient returns the Redis client
func GetClient() *redis.Client {
	return client
}

// Close releases the connection pool.
func Close() error {
	if client == nil {
		return nil
	}
	return client.Close()
}

// IsNil reports whether err is the "key does not exist" reply.
func IsNil(err error) bool {
	return errors.Is(err, redis.Nil)
}

// Set stores a key-value pair with expiration
func Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if client == nil {
		return ErrNotInitialized
	}
	return client.Set(ctx, key, value, expiration).Err()
}

// Get retrieves a value by key
func Get(ctx context.Context, key string) (string, error) {
	if client == nil {
		return "", ErrNotInitialized
	}
	return client.Get(ctx, key).Result()
}

// Del removes a key
func Del(ctx context.Context, key string) error {
	if client == nil {
		return ErrNotInitialized
	}
	return client.Del(ctx, key).Err()
}

// SetNX sets a key only if it does not exist
func SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	if client == nil {
		return false, ErrNotInitialized
	}
	return client.SetNX(ctx, key, value, expiration).Result()
}
