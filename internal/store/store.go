package store

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// Client is an authenticated session against one key/value store
type Client interface {
	ListKeys(ctx context.Context) ([]string, error)
	ReadRaw(ctx context.Context, key string) (string, error)
	WriteRaw(ctx context.Context, key, raw string) error
	DeleteKey(ctx context.Context, key string) error
}

// Opener opens sessions. Open fails with *ConnectionError.
type Opener interface {
	Open(ctx context.Context, credential, baseURL string) (Client, error)
}

// OpenerFunc adapts a function to Opener
type OpenerFunc func(ctx context.Context, credential, baseURL string) (Client, error)

// Open calls f
func (f OpenerFunc) Open(ctx context.Context, credential, baseURL string) (Client, error) {
	return f(ctx, credential, baseURL)
}

// Backend names the driver selected by a base URL scheme
type Backend string

const (
	BackendS1     Backend = "s1"
	BackendRedis  Backend = "redis"
	BackendSQLite Backend = "sqlite"
	BackendMemory Backend = "memory"
)

// BackendFor maps a base URL to its backend by scheme
func BackendFor(baseURL string) (Backend, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return BackendS1, nil
	case "redis", "rediss":
		return BackendRedis, nil
	case "sqlite", "file":
		return BackendSQLite, nil
	case "mem", "memory":
		return BackendMemory, nil
	default:
		return "", fmt.Errorf("unsupported scheme %q in %q", u.Scheme, baseURL)
	}
}

// Dispatcher opens a session with the backend matching the base URL scheme
type Dispatcher struct {
	S1     *S1Opener
	Redis  *RedisOpener
	SQLite *SQLiteOpener
	Memory *MemoryOpener
}

// NewDispatcher creates a dispatcher with every backend enabled
func NewDispatcher(s1 S1Options, sqliteDefaultPath string) *Dispatcher {
	return &Dispatcher{
		S1:     NewS1Opener(s1),
		Redis:  &RedisOpener{},
		SQLite: &SQLiteOpener{DefaultPath: sqliteDefaultPath},
		Memory: NewMemoryOpener(),
	}
}

// Open implements Opener
func (d *Dispatcher) Open(ctx context.Context, credential, baseURL string) (Client, error) {
	backend, err := BackendFor(baseURL)
	if err != nil {
		return nil, &ConnectionError{Endpoint: baseURL, Err: err}
	}

	switch backend {
	case BackendS1:
		if d.S1 != nil {
			return d.S1.Open(ctx, credential, baseURL)
		}
	case BackendRedis:
		if d.Redis != nil {
			return d.Redis.Open(ctx, credential, baseURL)
		}
	case BackendSQLite:
		if d.SQLite != nil {
			return d.SQLite.Open(ctx, credential, baseURL)
		}
	case BackendMemory:
		if d.Memory != nil {
			return d.Memory.Open(ctx, credential, baseURL)
		}
	}
	return nil, &ConnectionError{Endpoint: baseURL, Err: fmt.Errorf("backend %s is disabled", backend)}
}

// Close closes c when it holds resources
func Close(c Client) error {
	if closer, ok := c.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
