package store

import (
	"context"
	"errors"
	"net/url"
	"sort"
	"strings"
	"sync"
)

// MemoryOpener serves mem:// URLs from process memory. Databases outlive
// their sessions, so reconnecting sees earlier writes.
type MemoryOpener struct {
	mu  sync.Mutex
	dbs map[string]*memoryDB
}

// NewMemoryOpener creates an empty memory backend
func NewMemoryOpener() *MemoryOpener {
	return &MemoryOpener{dbs: make(map[string]*memoryDB)}
}

// Seed replaces the content of the database addressed by credential/baseURL
func (o *MemoryOpener) Seed(credential, baseURL string, values map[string]string) {
	db := o.database(credential, baseURL)
	db.mu.Lock()
	defer db.mu.Unlock()
	db.values = make(map[string]string, len(values))
	for k, v := range values {
		db.values[k] = v
	}
}

// Open implements Opener
func (o *MemoryOpener) Open(ctx context.Context, credential, baseURL string) (Client, error) {
	if strings.TrimSpace(credential) == "" {
		return nil, &ConnectionError{Endpoint: baseURL, Err: errors.New("token is required")}
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, &ConnectionError{Endpoint: baseURL, Err: err}
	}
	return &MemoryClient{db: o.database(credential, baseURL)}, nil
}

func (o *MemoryOpener) database(credential, baseURL string) *memoryDB {
	name := credential
	if u, err := url.Parse(baseURL); err == nil {
		name = u.Host + u.Path + "#" + credential
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	db, ok := o.dbs[name]
	if !ok {
		db = &memoryDB{values: make(map[string]string)}
		o.dbs[name] = db
	}
	return db
}

type memoryDB struct {
	mu     sync.RWMutex
	values map[string]string
}

// MemoryClient is a session on a memory database
type MemoryClient struct {
	db *memoryDB
}

// ListKeys implements Client. Keys are returned sorted.
func (c *MemoryClient) ListKeys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, &StoreError{Op: "list keys", Err: err}
	}
	c.db.mu.RLock()
	defer c.db.mu.RUnlock()

	keys := make([]string, 0, len(c.db.values))
	for k := range c.db.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// ReadRaw implements Client
func (c *MemoryClient) ReadRaw(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &StoreError{Op: "read", Key: key, Err: err}
	}
	c.db.mu.RLock()
	defer c.db.mu.RUnlock()

	value, ok := c.db.values[key]
	if !ok {
		return "", &NotFoundError{Key: key}
	}
	return value, nil
}

// WriteRaw implements Client
func (c *MemoryClient) WriteRaw(ctx context.Context, key, raw string) error {
	if err := ctx.Err(); err != nil {
		return &StoreError{Op: "write", Key: key, Err: err}
	}
	c.db.mu.Lock()
	defer c.db.mu.Unlock()
	c.db.values[key] = raw
	return nil
}

// DeleteKey implements Client
func (c *MemoryClient) DeleteKey(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return &StoreError{Op: "delete", Key: key, Err: err}
	}
	c.db.mu.Lock()
	defer c.db.mu.Unlock()
	delete(c.db.values, key)
	return nil
}
