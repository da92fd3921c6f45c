package migrations

import (
	"database/sql"
	"fmt"
)

// Migration represents a single database migration
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// AllMigrations contains all database migrations in order
var AllMigrations = []Migration{
	{
		Version: 1,
		Name:    "Add updated_at index",
		Up: `
			CREATE INDEX IF NOT EXISTS idx_kv_updated_at ON kv(bucket, updated_at DESC);
		`,
		Down: `
			DROP INDEX IF EXISTS idx_kv_updated_at;
		`,
	},
	{
		Version: 2,
		Name:    "Drop rows with empty keys",
		Up: `
			-- Older builds accepted empty keys, which no client can address
			DELETE FROM kv WHERE key = '';
		`,
		Down: `
			-- Cannot restore deleted data
		`,
	},
	{
		Version: 3,
		Name:    "Add query bookmarks",
		Up: `
			CREATE TABLE IF NOT EXISTS query_bookmarks (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				expression TEXT NOT NULL UNIQUE,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
		`,
		Down: `
			DROP TABLE IF EXISTS query_bookmarks;
		`,
	},
	{
		Version: 4,
		Name:    "Add activity log",
		Up: `
			CREATE TABLE IF NOT EXISTS activity (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				timestamp DATETIME NOT NULL,
				endpoint TEXT NOT NULL,
				op TEXT NOT NULL,
				key TEXT NOT NULL DEFAULT '',
				size INTEGER NOT NULL DEFAULT 0,
				duration_ms INTEGER NOT NULL,
				error TEXT
			);
			CREATE INDEX IF NOT EXISTS idx_activity_timestamp ON activity(timestamp DESC);
			CREATE INDEX IF NOT EXISTS idx_activity_endpoint ON activity(endpoint, op);
		`,
		Down: `
			DROP TABLE IF EXISTS activity;
		`,
	},
}

// InitSchema creates the key/value table.
// Keys are scoped by bucket, which holds the connection credential.
func InitSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		bucket TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (bucket, key)
	);
	`

	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	return nil
}

// Run executes all pending migrations on the database
func Run(db *sql.DB) error {
	// Initialize schema first to ensure all tables exist
	if err := InitSchema(db); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	// Create migrations tracking table if it doesn't exist
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	currentVersion, err := GetCurrentVersion(db)
	if err != nil {
		return fmt.Errorf("failed to get current migration version: %w", err)
	}

	// Apply pending migrations
	for _, migration := range AllMigrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", migration.Version, err)
		}

		if _, err := tx.Exec(migration.Up); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to apply migration %d (%s): %w", migration.Version, migration.Name, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
			migration.Version,
			migration.Name,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// GetCurrentVersion returns the current database schema version
func GetCurrentVersion(db *sql.DB) (int, error) {
	var version int
	err := db.QueryRow(`
		SELECT COALESCE(MAX(version), 0)
		FROM schema_migrations
	`).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return 0, err
	}
	return version, nil
}
