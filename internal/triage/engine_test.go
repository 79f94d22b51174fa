package triage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/llm-email-triage/internal/core"
)

const classifyResponse = `{"priority": "high", "category": "bug_report", "confidence": 0.85, "reasoning": "crash report"}`

type engineFixture struct {
	engine   *Engine
	vector   *stubVector
	events   *stubPublisher
	sessions *stubSessions
}

// newEngineFixture builds an engine with separate stub models per agent so
// the concurrent classify/summarize pair cannot steal each other's canned
// responses.
func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()
	logger := zap.NewNop()
	vector := newStubVector()
	events := &stubPublisher{}
	sessions := &stubSessions{}
	tp := testTextProcessor()

	classifier := NewClassifier(&stubLLM{responses: []string{classifyResponse}}, logger, tp, 4096)
	summarizer := NewSummarizer(&stubLLM{responses: []string{summaryResponse}}, vector, logger, tp, 4096, 500)
	drafter := NewReplyDrafter(&stubLLM{responses: []string{draftResponse}}, vector, logger, tp, 4096, 0.7)

	engine := NewEngine(
		newTestEnricher(vector),
		classifier,
		NewKeywordClassifier(),
		summarizer,
		drafter,
		NewPatternSink(vector, logger),
		events,
		sessions,
		logger,
	)
	return &engineFixture{engine: engine, vector: vector, events: events, sessions: sessions}
}

func TestEngineRun_HappyPath(t *testing.T) {
	f := newEngineFixture(t)

	result := f.engine.Run(context.Background(), *testEmail("e1", "Crash", "the app crashed on startup"), "")

	require.Equal(t, core.StatusCompleted, result.Status)
	assert.NotEmpty(t, result.SessionID)
	assert.Equal(t, "e1", result.EmailID)

	require.NotNil(t, result.Classification)
	assert.Equal(t, core.PriorityHigh, result.Classification.Priority)
	require.NotNil(t, result.Summary)
	assert.Equal(t, "export times out", result.Summary.Problem)
	require.NotNil(t, result.ReplyDraft)
	assert.NotEmpty(t, result.ReplyDraft.Body)
}

func TestEngineRun_EmitsLifecycleEvents(t *testing.T) {
	f := newEngineFixture(t)

	f.engine.Run(context.Background(), *testEmail("e1", "Crash", "the app crashed"), "")

	names := f.events.names()
	require.NotEmpty(t, names)
	assert.Equal(t, core.EventTriageStarted, names[0])
	assert.Equal(t, core.EventTriageCompleted, names[len(names)-1])
}

func TestEngineRun_InvalidInputFails(t *testing.T) {
	f := newEngineFixture(t)

	result := f.engine.Run(context.Background(), core.EmailData{ID: "e1", Body: "   "}, "")

	assert.Equal(t, core.StatusFailed, result.Status)
	assert.NotEmpty(t, result.Error)
	assert.Nil(t, result.Classification, "no stage runs after a terminal error")
	assert.Nil(t, result.ReplyDraft)

	names := f.events.names()
	require.NotEmpty(t, names)
	assert.Equal(t, core.EventTriageFailed, names[len(names)-1])
	assert.NotContains(t, names, core.EventTriageStarted)
}

func TestEngineRun_UsesProvidedSessionID(t *testing.T) {
	f := newEngineFixture(t)

	result := f.engine.Run(context.Background(), *testEmail("e1", "Crash", "boom"), "session-42")

	assert.Equal(t, "session-42", result.SessionID)
}

func TestEngineRun_SavesSession(t *testing.T) {
	f := newEngineFixture(t)

	result := f.engine.Run(context.Background(), *testEmail("e1", "Crash", "boom"), "")

	saved, ok, err := f.sessions.Get(context.Background(), result.SessionID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, result.EmailID, saved.EmailID)
}

func TestEngineRun_StoresPattern(t *testing.T) {
	f := newEngineFixture(t)

	f.engine.Run(context.Background(), *testEmail("e1", "Crash", "the app crashed"), "")

	assert.Eventually(t, func() bool {
		return len(f.vector.upserted(NamespaceEmailPatterns)) == 1
	}, 2*time.Second, 10*time.Millisecond, "pattern storage runs in the background")

	doc := f.vector.upserted(NamespaceEmailPatterns)[0]
	assert.Equal(t, "e1", doc.Metadata["email_id"])
	assert.Equal(t, "high", doc.Metadata["priority"])
	assert.Contains(t, doc.Content, "Problem: export times out")
}

func TestEngineRun_ContextCapHolds(t *testing.T) {
	f := newEngineFixture(t)
	for i := 0; i < 10; i++ {
		doc := core.RetrievedDoc{Content: "historical", Namespace: NamespaceEmailPatterns, Purpose: "historical"}
		f.vector.docs[NamespaceEmailPatterns] = append(f.vector.docs[NamespaceEmailPatterns], doc)
		f.vector.docs[NamespaceClassificationExamples] = append(f.vector.docs[NamespaceClassificationExamples],
			core.RetrievedDoc{Content: "example", Namespace: NamespaceClassificationExamples, Purpose: "classification"})
	}

	result := f.engine.Run(context.Background(), *testEmail("e1", "Crash", "boom"), "")

	assert.Equal(t, core.StatusCompleted, result.Status)
}

func TestEngineRun_NilLLMFallsBackToKeywords(t *testing.T) {
	logger := zap.NewNop()
	events := &stubPublisher{}
	drafter := NewReplyDrafter(nil, nil, logger, testTextProcessor(), 4096, 0.7)

	engine := NewEngine(newTestEnricher(nil), nil, NewKeywordClassifier(), nil, drafter, nil, events, nil, logger)

	result := engine.Run(context.Background(), *testEmail("e1", "URGENT: server down", "production is down, need immediate fix"), "")

	require.Equal(t, core.StatusCompleted, result.Status)
	require.NotNil(t, result.Classification)
	assert.Equal(t, core.PriorityUrgent, result.Classification.Priority)
	assert.Equal(t, core.CategoryBugReport, result.Classification.Category)

	require.NotNil(t, result.Summary)
	assert.Equal(t, "unable to identify problem", result.Summary.Problem)

	require.NotNil(t, result.ReplyDraft)
	assert.NotEmpty(t, result.ReplyDraft.Body, "template chain still yields a draft without any model")
}

func TestStateClone_Isolation(t *testing.T) {
	original := core.TriageState{
		SessionID:        "s1",
		RetrievedContext: []core.RetrievedDoc{{Content: "a"}},
		Metadata:         map[string]interface{}{"k": 1},
	}

	clone := original.Clone()
	clone.RetrievedContext = append(clone.RetrievedContext, core.RetrievedDoc{Content: "b"})
	clone.Metadata["k"] = 2

	assert.Len(t, original.RetrievedContext, 1)
	assert.Equal(t, 1, original.Metadata["k"])
}
