package cache

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

// MySQLCache is a MySQL implementation of the DedupCache interface, for
// deployments that already run MySQL and want a shared dedup window.
type MySQLCache struct {
	db          *sql.DB
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
}

// NewMySQLCache creates a new MySQL dedup cache
func NewMySQLCache(dsn string, logger *zap.Logger, cleanupFreq time.Duration) (*MySQLCache, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS dedup_cache (
			email_id VARCHAR(255) PRIMARY KEY,
			set_at TIMESTAMP,
			expires_at TIMESTAMP,
			INDEX idx_dedup_expires_at (expires_at)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	cache := &MySQLCache{
		db:          db,
		logger:      logger,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	go cache.startCleanupTask()

	return cache, nil
}

// Has reports whether an unexpired entry exists for the id
func (c *MySQLCache) Has(ctx context.Context, id string) (bool, error) {
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
func (c *MySQLCache) Set(ctx context.Context, id string, ttl time.Duration) error {
	now := time.Now()
	_, err := c.db.ExecContext(ctx,
		"REPLACE INTO dedup_cache (email_id, set_at, expires_at) VALUES (?, ?, ?)",
		id, now, now.Add(ttl))
	if err != nil {
		return fmt.Errorf("failed to set dedup entry: %w", err)
	}
	return nil
}

// Delete removes an entry
func (c *MySQLCache) Delete(ctx context.Context, id string) error {
	_, err := c.db.ExecContext(ctx, "DELETE FROM dedup_cache WHERE email_id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete dedup entry: %w", err)
	}
	return nil
}

// Cleanup removes expired entries
func (c *MySQLCache) Cleanup(ctx context.Context) error {
	result, err := c.db.ExecContext(ctx, "DELETE FROM dedup_cache WHERE expires_at <= ?", time.Now())
	if err != nil {
		return fmt.Errorf("failed to clean up dedup cache: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows > 0 {
		c.logger.Debug("Cleaned up expired dedup entries", zap.Int64("expired_count", rows))
	}
	return nil
}

func (c *MySQLCache) startCleanupTask() {
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
func (c *MySQLCache) Stop() {
	close(c.stopCh)
	if err := c.db.Close(); err != nil {
		c.logger.Warn("Failed to close MySQL connection", zap.Error(err))
	}
}
