package core

import (
	"context"
	"time"
)

// Chat message roles understood by every LLM adapter
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is a single turn of a chat-completion request
type Message struct {
	Role    string
	Content string
}

// InvokeOptions tune a single LLM invocation
type InvokeOptions struct {
	Temperature float32
	MaxTokens   int
}

// LLMClient defines the interface for invoking a hosted language model
type LLMClient interface {
	// Invoke sends a chat-completion request and returns the raw response text
	Invoke(ctx context.Context, messages []Message, opts InvokeOptions) (string, error)

	// ModelName returns the identifier of the underlying model
	ModelName() string
}

// SearchQuery is a namespace-scoped similarity search against the vector index
type SearchQuery struct {
	Query     string
	Namespace string
	Purpose   string
	TopK      int
	MinScore  float64
	Filter    map[string]string
}

// VectorDocument is a document to be embedded and upserted into the index
type VectorDocument struct {
	ID       string
	Content  string
	Metadata map[string]string
}

// VectorRepository defines the interface for the vector-retrieval index
type VectorRepository interface {
	// Search runs a similarity query and returns scored documents
	Search(ctx context.Context, query SearchQuery) ([]RetrievedDoc, error)

	// Upsert embeds and stores documents under a namespace
	Upsert(ctx context.Context, namespace string, docs []VectorDocument) error
}

// Embedder turns text into a vector for similarity search
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// DedupCache prevents re-processing of the same email id within a TTL window
type DedupCache interface {
	// Has reports whether an unexpired entry exists for the id
	Has(ctx context.Context, id string) (bool, error)

	// Set records an id with a time-to-live
	Set(ctx context.Context, id string, ttl time.Duration) error

	// Delete removes an entry
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}

// EventPublisher publishes fire-and-forget lifecycle events
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// SessionStore holds finalized triage results for caller polling
type SessionStore interface {
	Save(ctx context.Context, result *TriageResult) error
	Get(ctx context.Context, sessionID string) (*TriageResult, bool, error)
}
