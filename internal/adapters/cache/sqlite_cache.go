package cache

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// SQLiteCache is a SQLite implementation of the DedupCache interface, for
// single-instance deployments that want the dedup window to survive restarts.
type SQLiteCache struct {
	db          *sql.DB
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
}

// NewSQLiteCache creates a new SQLite dedup cache
func NewSQLiteCache(dbPath string, logger *zap.Logger, cleanupFreq time.Duration) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS dedup_cache (
			email_id TEXT PRIMARY KEY,
			set_at TIMESTAMP,
			expires_at TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_dedup_expires_at ON dedup_cache(expires_at)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	cache := &SQLiteCache{
		db:          db,
		logger:      logger,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	// Start background cleanup
	go cache.startCleanupTask()

	return cache, nil
}

// Has reports whether an unexpired entry exists for the id
func (c *SQLiteCache) Has(ctx context.Context, id string) (bool, error) {
	var count int
	err := c.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM dedup_cache WHERE email_id = ? AND expires_at > ?",
		id, time.Now()).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to query dedup cache: %w", err)
	}
	return count > 0, nil
}

// Set records an id with a time-to-live
func (c *SQLiteCache) Set(ctx context.Context, id string, ttl time.Duration) error {
	now := time.Now()
	_, err := c.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO dedup_cache (email_id, set_at, expires_at) VALUES (?, ?, ?)",
		id, now, now.Add(ttl))
	if err != nil {
		return fmt.Errorf("failed to set dedup entry: %w", err)
	}
	return nil
}

// Delete removes an entry
func (c *SQLiteCache) Delete(ctx context.Context, id string) error {
	_, err := c.db.ExecContext(ctx, "DELETE FROM dedup_cache WHERE email_id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete dedup entry: %w", err)
	}
	return nil
}

// Cleanup removes expired entries
func (c *SQLiteCache) Cleanup(ctx context.Context) error {
	result, err := c.db.ExecContext(ctx, "DELETE FROM dedup_cache WHERE expires_at <= ?", time.Now())
	if err != nil {
		return fmt.Errorf("failed to clean up dedup cache: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows > 0 {
		c.logger.Debug("Cleaned up expired dedup entries", zap.Int64("expired_count", rows))
	}
	return nil
}

func (c *SQLiteCache) startCleanupTask() {
	ticker := time.NewTicker(c.cleanupFreq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.Cleanup(context.Background()); err != nil {
				c.logger.Error("Failed to clean up dedup cache", zap.Error(err))
			}
		case <-c.stopCh:
			return
		}
	}
}

// Stop stops the background cleanup task and closes the database
func (c *SQLiteCache) Stop() {
	close(c.stopCh)
	if err := c.db.Close(); err != nil {
		c.logger.Warn("Failed to close SQLite database", zap.Error(err))
	}
}
