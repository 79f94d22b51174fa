package cache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type memoryEntry struct {
	setAt     time.Time
	expiresAt time.Time
}

// MemoryCache is an in-memory implementation of the DedupCache interface.
// Not durable: a process restart loses all entries, which is acceptable for
// the short dedup window.
type MemoryCache struct {
	entries     map[string]memoryEntry
	mu          sync.RWMutex
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
	now         func() time.Time
}

// NewMemoryCache creates a new in-memory dedup cache with a background sweep
func NewMemoryCache(logger *zap.Logger, cleanupFreq time.Duration) *MemoryCache {
	cache := &MemoryCache{
		entries:     make(map[string]memoryEntry),
		logger:      logger,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
		now:         time.Now,
	}

	// Start background cleanup
	go cache.startCleanupTask()

	return cache
}

// Has reports whether an unexpired entry exists, lazily evicting expired ones
func (c *MemoryCache) Has(ctx context.Context, id string) (bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[id]
	c.mu.RUnlock()

	if !ok {
		return false, nil
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, id)
		c.mu.Unlock()
		return false, nil
	}
	return true, nil
}

// Set records an id with a time-to-live
func (c *MemoryCache) Set(ctx context.Context, id string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.entries[id] = memoryEntry{
		setAt:     now,
		expiresAt: now.Add(ttl),
	}
	return nil
}

// Delete removes an entry
func (c *MemoryCache) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, id)
	return nil
}

// Cleanup removes expired entries
func (c *MemoryCache) Cleanup(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	expiredCount := 0

	for id, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, id)
			expiredCount++
		}
	}

	if expiredCount > 0 {
		c.logger.Debug("Cleaned up expired dedup entries", zap.Int("expired_count", expiredCount))
	}
	return nil
}

// startCleanupTask starts a background task to clean up expired entries
func (c *MemoryCache) startCleanupTask() {
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

// Stop stops the background cleanup task
func (c *MemoryCache) Stop() {
	close(c.stopCh)
}
