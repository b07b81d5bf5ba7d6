package linkcheck

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// CacheEntry is one remembered verification result.
type CacheEntry struct {
	URL         string
	Status      int
	IsValid     bool
	Error       string
	LastChecked time.Time
}

// Cache persists external link results in SQLite so repeated runs (watch
// mode, CI retries) do not re-request every URL.
// Use ":memory:" for an ephemeral cache.
type Cache struct {
	db  *sql.DB
	ttl time.Duration
	mu  sync.RWMutex
}

// OpenCache opens (and initializes) the cache database at dbPath.
func OpenCache(dbPath string, ttl time.Duration) (*Cache, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open link cache: %w", err)
	}
	// Writes are serialized by sqlite anyway, and a single connection keeps
	// ":memory:" databases coherent across the pool.
	db.SetMaxOpenConns(1)

	cache := &Cache{db: db, ttl: ttl}
	if err := cache.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize link cache schema: %w", err)
	}
	return cache, nil
}

func (c *Cache) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS link_results (
		url TEXT PRIMARY KEY,
		status INTEGER NOT NULL,
		valid INTEGER NOT NULL,
		error TEXT,
		checked_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_checked_at ON link_results(checked_at);
	`
	_, err := c.db.Exec(schema)
	return err
}

// Get returns the cached entry for url, or nil when absent.
func (c *Cache) Get(ctx context.Context, url string) (*CacheEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	row := c.db.QueryRowContext(ctx,
		"SELECT url, status, valid, error, checked_at FROM link_results WHERE url = ?", url)

	var entry CacheEntry
	var valid int
	var checkedAt int64
	var errMsg sql.NullString
	if err := row.Scan(&entry.URL, &entry.Status, &valid, &errMsg, &checkedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query link cache: %w", err)
	}

	entry.IsValid = valid == 1
	entry.Error = errMsg.String
	entry.LastChecked = time.Unix(checkedAt, 0)
	return &entry, nil
}

// Set stores or replaces the entry for its URL.
func (c *Cache) Set(ctx context.Context, entry *CacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	valid := 0
	if entry.IsValid {
		valid = 1
	}
	_, err := c.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO link_results (url, status, valid, error, checked_at) VALUES (?, ?, ?, ?, ?)",
		entry.URL, entry.Status, valid, entry.Error, entry.LastChecked.Unix())
	if err != nil {
		return fmt.Errorf("store link cache entry: %w", err)
	}
	return nil
}

// IsFresh reports whether an entry is still within the cache TTL.
func (c *Cache) IsFresh(entry *CacheEntry) bool {
	if entry == nil {
		return false
	}
	return time.Since(entry.LastChecked) < c.ttl
}

// Close releases the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}
