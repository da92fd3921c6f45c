// Package activity keeps a local log of the operations run against stores
// and aggregates it into per-operation statistics.
package activity

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/studiowebux/s1dash/internal/migrations"
)

const timestampLayout = "2006-01-02 15:04:05"

// Op names a recorded store operation
type Op string

const (
	OpList   Op = "list"
	OpRead   Op = "read"
	OpWrite  Op = "write"
	OpDelete Op = "delete"
)

type Entry struct {
	ID         int64
	Timestamp  time.Time
	Endpoint   string
	Op         Op
	Key        string
	Size       int64 // Bytes read or written
	DurationMs int64
	Error      string
}

type Stats struct {
	Endpoint      string
	Op            Op
	TotalCalls    int
	ErrorCount    int
	AvgDurationMs float64
	MinDurationMs int64
	MaxDurationMs int64
	TotalSize     int64
	LastCalled    time.Time
}

type Manager struct {
	db *sql.DB
}

func NewManager(dbPath string) (*Manager, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create activity directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open activity database: %w", err)
	}
	// Records come from concurrent session commands
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to activity database: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Manager{db: db}, nil
}

// Record appends an entry. A zero Timestamp means now.
func (m *Manager) Record(entry Entry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	var errMsg sql.NullString
	if entry.Error != "" {
		errMsg = sql.NullString{String: entry.Error, Valid: true}
	}

	_, err := m.db.Exec(`
		INSERT INTO activity (timestamp, endpoint, op, key, size, duration_ms, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		entry.Timestamp.UTC().Format(timestampLayout),
		entry.Endpoint,
		string(entry.Op),
		entry.Key,
		entry.Size,
		entry.DurationMs,
		errMsg,
	)
	if err != nil {
		return fmt.Errorf("failed to save activity entry: %w", err)
	}
	return nil
}

// Recent returns the newest entries, optionally for one endpoint
func (m *Manager) Recent(endpoint string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := m.db.Query(`
		SELECT id, timestamp, endpoint, op, key, size, duration_ms, error
		FROM activity
		WHERE ? = '' OR endpoint = ?
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`, endpoint, endpoint, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load activity: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var op string
		var timestamp any
		var errMsg sql.NullString
		if err := rows.Scan(&e.ID, &timestamp, &e.Endpoint, &op, &e.Key, &e.Size, &e.DurationMs, &errMsg); err != nil {
			return nil, fmt.Errorf("failed to scan activity entry: %w", err)
		}
		e.Op = Op(op)
		e.Error = errMsg.String
		e.Timestamp = toTime(timestamp)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Stats aggregates the log per endpoint and operation, most recent first
func (m *Manager) Stats(endpoint string) ([]Stats, error) {
	rows, err := m.db.Query(`
		SELECT
			endpoint,
			op,
			COUNT(*) AS total_calls,
			SUM(CASE WHEN error IS NOT NULL THEN 1 ELSE 0 END) AS error_count,
			AVG(duration_ms) AS avg_duration,
			MIN(duration_ms) AS min_duration,
			MAX(duration_ms) AS max_duration,
			SUM(size) AS total_size,
			MAX(timestamp) AS last_called
		FROM activity
		WHERE ? = '' OR endpoint = ?
		GROUP BY endpoint, op
		ORDER BY last_called DESC, endpoint, op
	`, endpoint, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to get activity stats: %w", err)
	}
	defer rows.Close()

	var statsList []Stats
	for rows.Next() {
		var s Stats
		var op string
		var lastCalled any
		err := rows.Scan(
			&s.Endpoint,
			&op,
			&s.TotalCalls,
			&s.ErrorCount,
			&s.AvgDurationMs,
			&s.MinDurationMs,
			&s.MaxDurationMs,
			&s.TotalSize,
			&lastCalled,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stats: %w", err)
		}
		s.Op = Op(op)
		s.LastCalled = toTime(lastCalled)
		statsList = append(statsList, s)
	}
	return statsList, rows.Err()
}

// Clear deletes the log, or only one endpoint's entries, and returns the
// number of removed entries
func (m *Manager) Clear(endpoint string) (int64, error) {
	result, err := m.db.Exec(`DELETE FROM activity WHERE ? = '' OR endpoint = ?`, endpoint, endpoint)
	if err != nil {
		return 0, fmt.Errorf("failed to clear activity: %w", err)
	}
	return result.RowsAffected()
}

func (m *Manager) Close() error {
	return m.db.Close()
}

// toTime converts a scanned timestamp to local time. The driver decodes
// DATETIME columns itself but hands aggregates back as text; both are UTC.
func toTime(value any) time.Time {
	var text string
	switch v := value.(type) {
	case time.Time:
		return v.Local()
	case string:
		text = v
	case []byte:
		text = string(v)
	default:
		return time.Time{}
	}

	if t, err := time.ParseInLocation(timestampLayout, text, time.UTC); err == nil {
		return t.Local()
	}
	if t, err := time.Parse(time.RFC3339, text); err == nil {
		return t.Local()
	}
	return time.Time{}
}
