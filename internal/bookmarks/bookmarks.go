// Package bookmarks keeps the JMESPath queries saved from the query view.
package bookmarks

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/studiowebux/s1dash/internal/migrations"
)

// ErrNotFound is returned when deleting an unknown bookmark
var ErrNotFound = errors.New("bookmark not found")

// Bookmark represents a saved query expression
type Bookmark struct {
	ID         int
	Expression string
	CreatedAt  time.Time
}

// Manager handles bookmark persistence
type Manager struct {
	db *sql.DB
}

// NewManager opens (and migrates) the database at dbPath
func NewManager(dbPath string) (*Manager, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Manager{db: db}, nil
}

// Save adds a new bookmark. It reports false when the expression is
// already saved.
func (m *Manager) Save(expression string) (bool, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return false, fmt.Errorf("expression cannot be empty")
	}

	result, err := m.db.Exec(`
		INSERT INTO query_bookmarks (expression, created_at)
		VALUES (?, CURRENT_TIMESTAMP)
		ON CONFLICT(expression) DO NOTHING
	`, expression)
	if err != nil {
		return false, fmt.Errorf("failed to save bookmark: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check save result: %w", err)
	}
	return rows > 0, nil
}

// Delete removes a bookmark by ID
func (m *Manager) Delete(id int) error {
	result, err := m.db.Exec("DELETE FROM query_bookmarks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete bookmark: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns all bookmarks, newest first
func (m *Manager) List() ([]Bookmark, error) {
	return m.query(`
		SELECT id, expression, created_at
		FROM query_bookmarks
		ORDER BY created_at DESC, id DESC
	`)
}

// Search filters bookmarks by substring match (case-insensitive)
func (m *Manager) Search(query string) ([]Bookmark, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return m.List()
	}

	return m.query(`
		SELECT id, expression, created_at
		FROM query_bookmarks
		WHERE expression LIKE ?
		ORDER BY created_at DESC, id DESC
	`, "%"+query+"%")
}

func (m *Manager) query(q string, args ...any) ([]Bookmark, error) {
	rows, err := m.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookmarks: %w", err)
	}
	defer rows.Close()

	var bookmarks []Bookmark
	for rows.Next() {
		var b Bookmark
		if err := rows.Scan(&b.ID, &b.Expression, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan bookmark: %w", err)
		}
		bookmarks = append(bookmarks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bookmarks: %w", err)
	}
	return bookmarks, nil
}

// Close closes the database connection
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
