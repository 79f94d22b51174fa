package factory

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mikey/llm-email-triage/internal/adapters/cache"
	"github.com/mikey/llm-email-triage/internal/config"
	"github.com/mikey/llm-email-triage/internal/core"
	"go.uber.org/zap"
)

// CacheFactory creates dedup caches based on configuration
type CacheFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewCacheFactory creates a new cache factory
func NewCacheFactory(cfg *config.Config, logger *zap.Logger) *CacheFactory {
	return &CacheFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateDedupCache creates a dedup cache based on the configuration
func (f *CacheFactory) CreateDedupCache() (core.DedupCache, error) {
	cacheType := f.cfg.GetString("dedup.type")
	cleanupFreq, err := f.cfg.GetDuration("dedup.cleanup_frequency")
	if err != nil {
		return nil, fmt.Errorf("invalid dedup cleanup frequency: %w", err)
	}

	switch cacheType {
	case "memory":
		return cache.NewMemoryCache(f.logger, cleanupFreq), nil
	case "redis":
		redisCache, err := cache.NewRedisCache(
			f.cfg.GetString("dedup.redis_addr"),
			f.cfg.GetInt("dedup.redis_db"),
			f.logger,
		)
		if err != nil {
			return nil, err
		}
		return redisCache, nil
	case "sqlite":
		sqlitePath := f.cfg.GetString("dedup.sqlite_path")
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(sqlitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		sqliteCache, err := cache.NewSQLiteCache(sqlitePath, f.logger, cleanupFreq)
		if err != nil {
			return nil, err
		}
		return sqliteCache, nil
	case "mysql":
		mysqlCache, err := cache.NewMySQLCache(f.cfg.GetString("dedup.mysql_dsn"), f.logger, cleanupFreq)
		if err != nil {
			return nil, err
		}
		return mysqlCache, nil
	default:
		return nil, fmt.Errorf("unsupported dedup cache type: %s", cacheType)
	}
}

// GetDedupTTL returns the configured dedup TTL
func (f *CacheFactory) GetDedupTTL() (time.Duration, error) {
	return f.cfg.GetDuration("dedup.ttl")
}

// IsDedupEnabled returns whether dedup is enabled
func (f *CacheFactory) IsDedupEnabled() bool {
	return f.cfg.GetBool("dedup.enabled")
}
