package session

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/mikey/llm-email-triage/internal/core"
)

// MemoryStore holds finalized triage results in a TTL map for caller
// polling. Results expire after the configured TTL; expired entries are
// purged periodically.
type MemoryStore struct {
	cache *gocache.Cache
}

// NewMemoryStore creates a new in-memory session store
func NewMemoryStore(ttl, cleanupFreq time.Duration) *MemoryStore {
	return &MemoryStore{
		cache: gocache.New(ttl, cleanupFreq),
	}
}

// Save stores a result under its session id
func (s *MemoryStore) Save(ctx context.Context, result *core.TriageResult) error {
	s.cache.Set(result.SessionID, result, gocache.DefaultExpiration)
	return nil
}

// Get retrieves a result by session id
func (s *MemoryStore) Get(ctx context.Context, sessionID string) (*core.TriageResult, bool, error) {
	if x, found := s.cache.Get(sessionID); found {
		return x.(*core.TriageResult), true, nil
	}
	return nil, false, nil
}
