package triage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mikey/llm-email-triage/internal/core"
	"go.uber.org/zap"
)

// Service is the business boundary for triage: it gates incoming emails
// through the prefilter and dedup cache, then hands them to the engine.
type Service struct {
	prefilter        *Prefilter
	prefilterEnabled bool
	dedup            core.DedupCache
	dedupEnabled     bool
	dedupTTL         time.Duration
	engine           *Engine
	logger           *zap.Logger
}

// NewService creates a new triage service
func NewService(
	prefilter *Prefilter,
	prefilterEnabled bool,
	dedup core.DedupCache,
	dedupEnabled bool,
	dedupTTL time.Duration,
	engine *Engine,
	logger *zap.Logger,
) *Service {
	return &Service{
		prefilter:        prefilter,
		prefilterEnabled: prefilterEnabled,
		dedup:            dedup,
		dedupEnabled:     dedupEnabled,
		dedupTTL:         dedupTTL,
		engine:           engine,
		logger:           logger,
	}
}

// Triage processes one inbound email end to end. Emails the prefilter rules
// out (spam, notifications, promotions) get a cheap prefilter-derived result
// without touching the model. Duplicate ids within the dedup window are
// answered the same way.
func (s *Service) Triage(ctx context.Context, email *core.EmailData) (*core.TriageResult, error) {
	if s.prefilterEnabled {
		verdict := s.prefilter.Check(email)
		if !verdict.ShouldProcess {
			s.logger.Info("Prefilter ruled out email",
				zap.String("email_id", email.ID),
				zap.String("reasoning", verdict.Reasoning))
			return prefilterResult(email, verdict), nil
		}
	}

	if s.dedupEnabled && s.dedup != nil {
		seen, err := s.dedup.Has(ctx, email.ID)
		if err != nil {
			s.logger.Warn("Dedup check failed, processing anyway",
				zap.String("email_id", email.ID),
				zap.Error(err))
		} else if seen {
			s.logger.Info("Duplicate email within dedup window, skipping",
				zap.String("email_id", email.ID))
			return &core.TriageResult{
				SessionID:   uuid.NewString(),
				EmailID:     email.ID,
				Status:      core.StatusCompleted,
				Error:       "",
				CompletedAt: time.Now(),
			}, nil
		}
		if err := s.dedup.Set(ctx, email.ID, s.dedupTTL); err != nil {
			s.logger.Warn("Failed to record email in dedup cache",
				zap.String("email_id", email.ID),
				zap.Error(err))
		}
	}

	return s.engine.Run(ctx, *email, ""), nil
}

// prefilterResult synthesizes a completed result from a prefilter verdict
func prefilterResult(email *core.EmailData, verdict PrefilterResult) *core.TriageResult {
	return &core.TriageResult{
		SessionID: uuid.NewString(),
		EmailID:   email.ID,
		Status:    core.StatusCompleted,
		Classification: &core.Classification{
			Priority:   verdict.Priority,
			Category:   verdict.Category,
			Confidence: verdict.Confidence,
			Reasoning:  verdict.Reasoning,
		},
		CompletedAt: time.Now(),
	}
}
