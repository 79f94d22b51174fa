package triage

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mikey/llm-email-triage/internal/core"
	"go.uber.org/zap"
)

// Pipeline step names recorded in the state for caller polling
const (
	stepInitialize = "initialize"
	stepEnrich     = "context_enrichment"
	stepAnalyze    = "classify_and_summarize"
	stepCoordinate = "coordinate"
	stepReply      = "reply_draft"
	stepStore      = "pattern_storage"
	stepFinalize   = "finalize"
)

// Engine runs the triage pipeline: initialize, enrich, classify and
// summarize concurrently, coordinate, draft a reply, store the pattern,
// finalize. Stages thread an immutable-by-convention state and return
// events; the engine is the single place events get published.
//
// A terminal error recorded in the state halts all later business stages;
// only finalization still runs, producing a failed result.
type Engine struct {
	enricher   *ContextEnricher
	classifier *Classifier
	keyword    *KeywordClassifier
	summarizer *Summarizer
	drafter    *ReplyDrafter
	patterns   *PatternSink
	events     core.EventPublisher
	sessions   core.SessionStore
	logger     *zap.Logger
}

// NewEngine creates a pipeline engine. classifier and summarizer may be nil
// when no LLM provider is configured; the keyword classifier and fallback
// heuristics are used instead.
func NewEngine(
	enricher *ContextEnricher,
	classifier *Classifier,
	keyword *KeywordClassifier,
	summarizer *Summarizer,
	drafter *ReplyDrafter,
	patterns *PatternSink,
	events core.EventPublisher,
	sessions core.SessionStore,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		enricher:   enricher,
		classifier: classifier,
		keyword:    keyword,
		summarizer: summarizer,
		drafter:    drafter,
		patterns:   patterns,
		events:     events,
		sessions:   sessions,
		logger:     logger,
	}
}

// Run executes a full triage for one email. sessionID may be empty, in which
// case one is generated. The returned result always has a status; failed
// only occurs for invalid input.
func (e *Engine) Run(ctx context.Context, email core.EmailData, sessionID string) *core.TriageResult {
	start := time.Now()

	state, events := e.initialize(email, sessionID)
	e.dispatch(ctx, events)

	state, events = e.enrich(ctx, state)
	e.dispatch(ctx, events)

	state, events = e.analyze(ctx, state)
	e.dispatch(ctx, events)

	state, events = e.coordinate(state)
	e.dispatch(ctx, events)

	state, events = e.draftReply(ctx, state)
	e.dispatch(ctx, events)

	state, events = e.storePattern(state)
	e.dispatch(ctx, events)

	result, events := e.finalize(ctx, state, start)
	e.dispatch(ctx, events)

	return result
}

// dispatch publishes stage events. Publishing is fire-and-forget; failures
// are logged and never affect the run.
func (e *Engine) dispatch(ctx context.Context, events []core.Event) {
	if e.events == nil {
		return
	}
	for _, event := range events {
		if err := e.events.Publish(ctx, event); err != nil {
			e.logger.Warn("Event publish failed",
				zap.String("event", event.Name),
				zap.Error(err))
		}
	}
}

func (e *Engine) initialize(email core.EmailData, sessionID string) (core.TriageState, []core.Event) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	state := core.TriageState{
		SessionID:   sessionID,
		Email:       email,
		Metadata:    map[string]interface{}{"started_at": time.Now()},
		CurrentStep: stepInitialize,
		Progress:    5,
	}

	// Invalid input is the one failure class that aborts a run
	if strings.TrimSpace(email.Body) == "" || email.ID == "" {
		state.Err = &core.StageError{
			Message:   "email id and body are required",
			Stage:     stepInitialize,
			Timestamp: time.Now(),
		}
		return state, nil
	}

	return state, []core.Event{{
		Name: core.EventTriageStarted,
		Payload: map[string]interface{}{
			"session_id": sessionID,
			"email_id":   email.ID,
			"subject":    email.Metadata.Subject,
		},
		OccurredAt: time.Now(),
	}}
}

func (e *Engine) enrich(ctx context.Context, prev core.TriageState) (core.TriageState, []core.Event) {
	if prev.Failed() {
		return prev, nil
	}

	state := prev.Clone()
	state.CurrentStep = stepEnrich
	state.Progress = 20

	if e.enricher != nil {
		stageStart := time.Now()
		enriched := e.enricher.Enrich(ctx, &state.Email)
		state.RetrievedContext = append(state.RetrievedContext, enriched.Docs...)
		if len(state.RetrievedContext) > core.MaxRetrievedContext {
			state.RetrievedContext = state.RetrievedContext[:core.MaxRetrievedContext]
		}
		state.ToneProfile = enriched.ToneProfile
		state.Metadata["enrich_ms"] = time.Since(stageStart).Milliseconds()
		state.Metadata["context_docs"] = len(state.RetrievedContext)
	}

	return state, nil
}

// analyze runs classification and summarization as a concurrent pair with a
// single join point. Each goroutine writes only its own slot.
func (e *Engine) analyze(ctx context.Context, prev core.TriageState) (core.TriageState, []core.Event) {
	if prev.Failed() {
		return prev, nil
	}

	state := prev.Clone()
	state.CurrentStep = stepAnalyze
	state.Progress = 40
	stageStart := time.Now()

	var classification core.Classification
	var summary core.Summary

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		classification = e.classify(ctx, &state)
	}()
	go func() {
		defer wg.Done()
		summary = e.summarize(ctx, &state)
	}()
	wg.Wait()

	state.Classification = &classification
	state.Summary = &summary
	state.Metadata["analyze_ms"] = time.Since(stageStart).Milliseconds()
	return state, nil
}

func (e *Engine) classify(ctx context.Context, state *core.TriageState) core.Classification {
	if e.classifier == nil {
		return e.keyword.Classify(&state.Email)
	}
	return e.classifier.Classify(ctx, &state.Email, docsForPurpose(state.RetrievedContext, "classification"))
}

func (e *Engine) summarize(ctx context.Context, state *core.TriageState) core.Summary {
	if e.summarizer == nil {
		return FallbackSummary(state.Email.Body)
	}
	return e.summarizer.SummarizeWithRAG(ctx, &state.Email)
}

// coordinate records the join of the parallel pair and advances progress
func (e *Engine) coordinate(prev core.TriageState) (core.TriageState, []core.Event) {
	if prev.Failed() {
		return prev, nil
	}

	state := prev.Clone()
	state.CurrentStep = stepCoordinate
	state.Progress = 60

	if state.Classification != nil {
		e.logger.Info("Email classified",
			zap.String("session_id", state.SessionID),
			zap.String("priority", string(state.Classification.Priority)),
			zap.String("category", string(state.Classification.Category)),
			zap.Float64("confidence", state.Classification.Confidence))
	}
	return state, nil
}

func (e *Engine) draftReply(ctx context.Context, prev core.TriageState) (core.TriageState, []core.Event) {
	if prev.Failed() {
		return prev, nil
	}

	state := prev.Clone()
	state.CurrentStep = stepReply
	state.Progress = 80
	stageStart := time.Now()

	draft := e.drafter.DraftReply(ctx, &state.Email, state.Classification, state.Summary, state.ToneProfile)
	state.ReplyDraft = &draft
	state.Metadata["reply_ms"] = time.Since(stageStart).Milliseconds()
	return state, nil
}

func (e *Engine) storePattern(prev core.TriageState) (core.TriageState, []core.Event) {
	if prev.Failed() {
		return prev, nil
	}

	state := prev.Clone()
	state.CurrentStep = stepStore
	state.Progress = 90

	if e.patterns != nil {
		e.patterns.StoreAsync(state)
	}
	return state, nil
}

func (e *Engine) finalize(ctx context.Context, prev core.TriageState, start time.Time) (*core.TriageResult, []core.Event) {
	state := prev.Clone()
	state.CurrentStep = stepFinalize
	state.Progress = 100

	result := &core.TriageResult{
		SessionID:      state.SessionID,
		EmailID:        state.Email.ID,
		Status:         core.StatusCompleted,
		Classification: state.Classification,
		Summary:        state.Summary,
		ReplyDraft:     state.ReplyDraft,
		CompletedAt:    time.Now(),
	}

	eventName := core.EventTriageCompleted
	if state.Failed() {
		result.Status = core.StatusFailed
		result.Error = state.Err.Message
		eventName = core.EventTriageFailed
	}

	if e.sessions != nil {
		if err := e.sessions.Save(ctx, result); err != nil {
			e.logger.Warn("Failed to save session result",
				zap.String("session_id", state.SessionID),
				zap.Error(err))
		}
	}

	e.logger.Info("Triage run finished",
		zap.String("session_id", state.SessionID),
		zap.String("email_id", state.Email.ID),
		zap.String("status", string(result.Status)),
		zap.Duration("duration", time.Since(start)))

	return result, []core.Event{{
		Name: eventName,
		Payload: map[string]interface{}{
			"session_id": state.SessionID,
			"email_id":   state.Email.ID,
			"status":     string(result.Status),
			"duration":   time.Since(start).Milliseconds(),
		},
		OccurredAt: time.Now(),
	}}
}

// docsForPurpose filters retrieved context to a single purpose tag
func docsForPurpose(docs []core.RetrievedDoc, purpose string) []core.RetrievedDoc {
	var out []core.RetrievedDoc
	for _, doc := range docs {
		if doc.Purpose == purpose {
			out = append(out, doc)
		}
	}
	return out
}
