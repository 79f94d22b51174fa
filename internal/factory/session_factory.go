package factory

import (
	"fmt"

	"github.com/mikey/llm-email-triage/internal/adapters/session"
	"github.com/mikey/llm-email-triage/internal/config"
	"github.com/mikey/llm-email-triage/internal/core"
)

// SessionFactory creates the session result store
type SessionFactory struct {
	cfg *config.Config
}

// NewSessionFactory creates a new session factory
func NewSessionFactory(cfg *config.Config) *SessionFactory {
	return &SessionFactory{cfg: cfg}
}

// CreateSessionStore creates the session store from configuration
func (f *SessionFactory) CreateSessionStore() (core.SessionStore, error) {
	ttl, err := f.cfg.GetDuration("session.ttl")
	if err != nil {
		return nil, fmt.Errorf("invalid session TTL: %w", err)
	}
	cleanupFreq, err := f.cfg.GetDuration("session.cleanup_frequency")
	if err != nil {
		return nil, fmt.Errorf("invalid session cleanup frequency: %w", err)
	}
	return session.NewMemoryStore(ttl, cleanupFreq), nil
}
