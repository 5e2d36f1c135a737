package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteCache persists entries in a single SQLite database under the cache dir
type SQLiteCache struct {
	db  *sql.DB
	ttl time.Duration
}

// OpenSQLiteCache opens (or creates) dir/cache.db
func OpenSQLiteCache(dir string, ttl time.Duration) (*SQLiteCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "cache.db")+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Single connection for SQLite
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	schema := `
	CREATE TABLE IF NOT EXISTS entries (
		key        TEXT PRIMARY KEY,
		data       BLOB NOT NULL,
		expires_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_entries_expiry ON entries(expires_at);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate cache schema: %w", err)
	}

	return &SQLiteCache{db: db, ttl: ttl}, nil
}

// Get retrieves an unexpired value
func (c *SQLiteCache) Get(key string) ([]byte, bool) {
	var data []byte
	err := c.db.QueryRow(
		`SELECT data FROM entries WHERE key = ? AND expires_at > ?`,
		key, time.Now().UnixNano(),
	).Scan(&data)
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set upserts a value; a zero ttl uses the cache default
func (c *SQLiteCache) Set(key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.ttl
	}
	_, err := c.db.Exec(
		`INSERT INTO entries (key, data, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET data = excluded.data, expires_at = excluded.expires_at`,
		key, value, time.Now().Add(ttl).UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("store cache entry: %w", err)
	}
	return nil
}

// Delete removes a value
func (c *SQLiteCache) Delete(key string) error {
	_, err := c.db.Exec(`DELETE FROM entries WHERE key = ?`, key)
	return err
}

// Clear removes every entry
func (c *SQLiteCache) Clear() error {
	_, err := c.db.Exec(`DELETE FROM entries`)
	return err
}

// Prune deletes expired entries and returns how many were removed
func (c *SQLiteCache) Prune() (int, error) {
	res, err := c.db.Exec(`DELETE FROM entries WHERE expires_at <= ?`, time.Now().UnixNano())
	if err != nil {
		return 0, fmt.Errorf("prune cache: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// Close releases the database handle
func (c *SQLiteCache) Close() error {
	if c.db == nil {
		return errors.New("cache already closed")
	}
	err := c.db.Close()
	c.db = nil
	return err
}
