package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"
)

// defaultScanCount is the SCAN batch hint
const defaultScanCount = 500

// RedisOpener opens sessions against a Redis server.
// The base URL is a redis:// or rediss:// URL; the credential is the
// password, or "user:password" for ACL users.
type RedisOpener struct {
	ScanCount int64
}

// RedisOptions parses a base URL and credential into client options
func RedisOptions(credential, baseURL string) (*redis.Options, error) {
	opts, err := redis.ParseURL(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	credential = strings.TrimSpace(credential)
	if credential != "" {
		if user, pass, ok := strings.Cut(credential, ":"); ok {
			opts.Username = user
			opts.Password = pass
		} else {
			opts.Password = credential
		}
	}
	return opts, nil
}

// Open implements Opener
func (o *RedisOpener) Open(ctx context.Context, credential, baseURL string) (Client, error) {
	opts, err := RedisOptions(credential, baseURL)
	if err != nil {
		return nil, &ConnectionError{Endpoint: baseURL, Err: err}
	}

	client := redis.NewClient(opts)

	// Test connection
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, &ConnectionError{Endpoint: baseURL, Err: err}
	}

	count := o.ScanCount
	if count <= 0 {
		count = defaultScanCount
	}
	return &RedisClient{client: client, scanCount: count}, nil
}

// RedisClient stores keys as plain Redis strings
type RedisClient struct {
	client    *redis.Client
	scanCount int64
}

// ListKeys implements Client. Keys are returned sorted.
func (c *RedisClient) ListKeys(ctx context.Context) ([]string, error) {
	keys := []string{}
	iter := c.client.Scan(ctx, 0, "*", c.scanCount).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, &StoreError{Op: "list keys", Err: err}
	}
	sort.Strings(keys)
	return keys, nil
}

// ReadRaw implements Client
func (c *RedisClient) ReadRaw(ctx context.Context, key string) (string, error) {
	value, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", &NotFoundError{Key: key}
		}
		return "", &StoreError{Op: "read", Key: key, Err: err}
	}
	return value, nil
}

// WriteRaw implements Client
func (c *RedisClient) WriteRaw(ctx context.Context, key, raw string) error {
	if err := c.client.Set(ctx, key, raw, 0).Err(); err != nil {
		return &StoreError{Op: "write", Key: key, Err: err}
	}
	return nil
}

// DeleteKey implements Client
func (c *RedisClient) DeleteKey(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return &StoreError{Op: "delete", Key: key, Err: err}
	}
	return nil
}

// Close closes the Redis connection pool
func (c *RedisClient) Close() error {
	return c.client.Close()
}
