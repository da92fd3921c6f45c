package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/studiowebux/s1dash/internal/migrations"
)

// SQLiteOpener opens sessions against a local SQLite file.
// The base URL is sqlite:///abs/path.db, sqlite://rel/path.db or file:// with
// the same shapes; the credential selects the bucket the keys live in.
type SQLiteOpener struct {
	// DefaultPath is used for sqlite:// URLs without a path
	DefaultPath string
}

// SQLitePath extracts the database path from a base URL
func SQLitePath(baseURL, defaultPath string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid sqlite URL: %w", err)
	}

	path := u.Host + u.Path
	if u.Opaque != "" {
		path = u.Opaque
	}
	if path == "" || path == "/" {
		path = defaultPath
	}
	if path == "" {
		return "", errors.New("sqlite URL has no path")
	}
	return path, nil
}

// Open implements Opener
func (o *SQLiteOpener) Open(ctx context.Context, credential, baseURL string) (Client, error) {
	bucket := strings.TrimSpace(credential)
	if bucket == "" {
		return nil, &ConnectionError{Endpoint: baseURL, Err: errors.New("bucket name is required")}
	}

	path, err := SQLitePath(baseURL, o.DefaultPath)
	if err != nil {
		return nil, &ConnectionError{Endpoint: baseURL, Err: err}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, &ConnectionError{Endpoint: baseURL, Err: fmt.Errorf("failed to create database directory: %w", err)}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, &ConnectionError{Endpoint: baseURL, Err: fmt.Errorf("failed to open database: %w", err)}
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, &ConnectionError{Endpoint: baseURL, Err: fmt.Errorf("failed to connect to database: %w", err)}
	}

	// Run database migrations
	if err := migrations.Run(db); err != nil {
		db.Close()
		return nil, &ConnectionError{Endpoint: baseURL, Err: fmt.Errorf("failed to run migrations: %w", err)}
	}

	return &SQLiteClient{db: db, bucket: bucket}, nil
}

// SQLiteClient stores keys in the kv table of one bucket
type SQLiteClient struct {
	db     *sql.DB
	bucket string
}

// ListKeys implements Client. Keys are returned sorted.
func (c *SQLiteClient) ListKeys(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT key FROM kv WHERE bucket = ? ORDER BY key`, c.bucket)
	if err != nil {
		return nil, &StoreError{Op: "list keys", Err: err}
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, &StoreError{Op: "list keys", Err: err}
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: "list keys", Err: err}
	}
	return keys, nil
}

// ReadRaw implements Client
func (c *SQLiteClient) ReadRaw(ctx context.Context, key string) (string, error) {
	var value string
	err := c.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE bucket = ? AND key = ?`, c.bucket, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", &NotFoundError{Key: key}
		}
		return "", &StoreError{Op: "read", Key: key, Err: err}
	}
	return value, nil
}

// WriteRaw implements Client
func (c *SQLiteClient) WriteRaw(ctx context.Context, key, raw string) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO kv (bucket, key, value, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(bucket, key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, c.bucket, key, raw)
	if err != nil {
		return &StoreError{Op: "write", Key: key, Err: err}
	}
	return nil
}

// DeleteKey implements Client
func (c *SQLiteClient) DeleteKey(ctx context.Context, key string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM kv WHERE bucket = ? AND key = ?`, c.bucket, key); err != nil {
		return &StoreError{Op: "delete", Key: key, Err: err}
	}
	return nil
}

// Close closes the database
func (c *SQLiteClient) Close() error {
	return c.db.Close()
}
