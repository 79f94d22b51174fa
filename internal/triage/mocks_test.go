package triage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mikey/llm-email-triage/internal/core"
	"github.com/mikey/llm-email-triage/internal/utils"
	"go.uber.org/zap"
)

// stubLLM returns canned responses in order, or a fixed error
type stubLLM struct {
	mu        sync.Mutex
	responses []string
	err       error
	calls     int
	prompts   []string
}

func (s *stubLLM) Invoke(ctx context.Context, messages []core.Message, opts core.InvokeOptions) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	for _, m := range messages {
		if m.Role == core.RoleUser {
			s.prompts = append(s.prompts, m.Content)
		}
	}
	if s.err != nil {
		return "", s.err
	}
	if len(s.responses) == 0 {
		return "", fmt.Errorf("stub has no responses left")
	}
	response := s.responses[0]
	if len(s.responses) > 1 {
		s.responses = s.responses[1:]
	}
	return response, nil
}

func (s *stubLLM) ModelName() string { return "stub" }

func (s *stubLLM) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// stubVector serves canned documents per namespace and records upserts
type stubVector struct {
	mu        sync.Mutex
	docs      map[string][]core.RetrievedDoc
	searchErr error
	upsertErr error
	upserts   map[string][]core.VectorDocument
	queries   []core.SearchQuery
}

func newStubVector() *stubVector {
	return &stubVector{
		docs:    make(map[string][]core.RetrievedDoc),
		upserts: make(map[string][]core.VectorDocument),
	}
}

func (s *stubVector) Search(ctx context.Context, query core.SearchQuery) ([]core.RetrievedDoc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, query)
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return s.docs[query.Namespace], nil
}

func (s *stubVector) Upsert(ctx context.Context, namespace string, docs []core.VectorDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.upserts[namespace] = append(s.upserts[namespace], docs...)
	return nil
}

func (s *stubVector) upserted(namespace string) []core.VectorDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upserts[namespace]
}

// stubPublisher records published events
type stubPublisher struct {
	mu     sync.Mutex
	events []core.Event
	err    error
}

func (s *stubPublisher) Publish(ctx context.Context, event core.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

func (s *stubPublisher) names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.events))
	for i, e := range s.events {
		out[i] = e.Name
	}
	return out
}

// stubSessions records saved results
type stubSessions struct {
	mu    sync.Mutex
	saved []*core.TriageResult
}

func (s *stubSessions) Save(ctx context.Context, result *core.TriageResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, result)
	return nil
}

func (s *stubSessions) Get(ctx context.Context, sessionID string) (*core.TriageResult, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.saved {
		if r.SessionID == sessionID {
			return r, true, nil
		}
	}
	return nil, false, nil
}

// stubDedup is an in-memory DedupCache without expiry
type stubDedup struct {
	mu   sync.Mutex
	seen map[string]bool
	err  error
}

func newStubDedup() *stubDedup {
	return &stubDedup{seen: make(map[string]bool)}
}

func (s *stubDedup) Has(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	return s.seen[id], nil
}

func (s *stubDedup) Set(ctx context.Context, id string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen[id] = true
	return nil
}

func (s *stubDedup) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.seen, id)
	return nil
}

func (s *stubDedup) Cleanup(ctx context.Context) error { return nil }

func testEmail(id, subject, body string) *core.EmailData {
	return &core.EmailData{
		ID:   id,
		Body: body,
		Metadata: core.EmailMetadata{
			Subject: subject,
			From:    "alice@example.com",
			To:      []string{"support@example.com"},
			UserID:  "alice@example.com",
		},
	}
}

func testTextProcessor() *utils.TextProcessor {
	return utils.NewTextProcessor(zap.NewNop())
}
