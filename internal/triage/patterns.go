package triage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mikey/llm-email-triage/internal/core"
	"go.uber.org/zap"
)

// PatternSink persists completed triages as retrievable documents so future
// runs can learn from them. Writes are best-effort; the pipeline never waits
// on or fails because of this sink.
type PatternSink struct {
	vector core.VectorRepository
	logger *zap.Logger
}

// NewPatternSink creates a new pattern-storage sink
func NewPatternSink(vector core.VectorRepository, logger *zap.Logger) *PatternSink {
	return &PatternSink{
		vector: vector,
		logger: logger,
	}
}

// Store synthesizes a human-readable pattern document from a completed
// triage state and upserts it into the email-patterns namespace.
func (p *PatternSink) Store(ctx context.Context, state core.TriageState) error {
	if p.vector == nil {
		return nil
	}
	if state.Classification == nil || state.Summary == nil {
		return fmt.Errorf("state missing classification or summary, nothing to store")
	}

	keywords := ExtractKeywords(state.Email.Metadata.Subject + " " + state.Email.Body)

	var b strings.Builder
	fmt.Fprintf(&b, "Email triage pattern (%s/%s):\n", state.Classification.Priority, state.Classification.Category)
	fmt.Fprintf(&b, "Problem: %s\n", state.Summary.Problem)
	fmt.Fprintf(&b, "Ask: %s\n", state.Summary.Ask)
	fmt.Fprintf(&b, "Summary: %s\n", state.Summary.Summary)
	if state.ReplyDraft != nil {
		fmt.Fprintf(&b, "Reply tone: %s\n", state.ReplyDraft.Tone)
	}
	if len(keywords) > 0 {
		fmt.Fprintf(&b, "Keywords: %s\n", strings.Join(keywords, ", "))
	}

	doc := core.VectorDocument{
		ID:      newDocumentID(),
		Content: b.String(),
		Metadata: map[string]string{
			"email_id":   state.Email.ID,
			"session_id": state.SessionID,
			"priority":   string(state.Classification.Priority),
			"category":   string(state.Classification.Category),
			"confidence": fmt.Sprintf("%.2f", state.Classification.Confidence),
			"stored_at":  time.Now().Format(time.RFC3339),
		},
	}

	if err := p.vector.Upsert(ctx, NamespaceEmailPatterns, []core.VectorDocument{doc}); err != nil {
		return fmt.Errorf("failed to store triage pattern: %w", err)
	}
	return nil
}

// StoreAsync runs Store in the background, logging any failure. This is the
// call the pipeline uses.
func (p *PatternSink) StoreAsync(state core.TriageState) {
	go func() {
		// Detached from the request lifetime on purpose
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := p.Store(ctx, state); err != nil {
			p.logger.Warn("Pattern storage failed",
				zap.String("session_id", state.SessionID),
				zap.Error(err))
		}
	}()
}
