package ports

import (
	"context"

	"github.com/mikey/llm-email-triage/internal/core"
)

// EmailIngress defines the interface for an inbound email source
type EmailIngress interface {
	// ProcessEmail runs triage for a single email and returns the result
	ProcessEmail(ctx context.Context, email *core.EmailData) (*core.TriageResult, error)

	// Start starts the ingress service
	Start() error

	// Stop stops the ingress service
	Stop() error
}
