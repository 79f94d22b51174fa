package core

import (
	"time"
)

// Priority is the urgency level assigned to an email during triage
type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
	PriorityLow    Priority = "low"
)

// Category is the kind of request an email represents
type Category string

const (
	CategoryBugReport      Category = "bug_report"
	CategoryFeatureRequest Category = "feature_request"
	CategoryQuestion       Category = "question"
	CategoryComplaint      Category = "complaint"
	CategoryPraise         Category = "praise"
	CategoryOther          Category = "other"
)

// EmailMetadata carries the envelope fields of an inbound email
type EmailMetadata struct {
	Subject   string
	From      string
	To        []string
	Timestamp time.Time
	Headers   map[string][]string
	UserID    string
}

// EmailData is the immutable input to a triage run
type EmailData struct {
	ID       string
	Body     string
	Metadata EmailMetadata
}

// Classification is the structured result of the classification stage
type Classification struct {
	Priority   Priority `json:"priority"`
	Category   Category `json:"category"`
	Confidence float64  `json:"confidence"`
	Reasoning  string   `json:"reasoning"`
}

// Summary is the structured result of the summarization stage
type Summary struct {
	Problem string `json:"problem"`
	Context string `json:"context"`
	Ask     string `json:"ask"`
	Summary string `json:"summary"`
}

// ReplyDraft is the generated reply produced by the reply stage
type ReplyDraft struct {
	Subject   string   `json:"subject"`
	Body      string   `json:"body"`
	Tone      string   `json:"tone"`
	NextSteps []string `json:"next_steps"`
}

// RetrievedDoc is a single similarity-search hit merged into the triage state
type RetrievedDoc struct {
	Content   string
	Metadata  map[string]string
	Score     float64
	Namespace string
	Purpose   string
}

// ToneProfile is the aggregated communication style learned from a user's
// historical emails. It outlives a single triage run and is stored wholesale
// in the vector index under the user-tone-profiles namespace.
type ToneProfile struct {
	UserEmail      string   `json:"user_email"`
	Formality      string   `json:"formality"`
	Warmth         string   `json:"warmth"`
	Urgency        string   `json:"urgency"`
	Directness     string   `json:"directness"`
	TechnicalLevel string   `json:"technical_level"`
	EmotionalTone  string   `json:"emotional_tone"`
	ResponseLength string   `json:"response_length"`
	GreetingStyle  string   `json:"greeting_style"`
	CommonPhrases  []string `json:"common_phrases"`
	Keywords       []string `json:"keywords"`
	Confidence     float64  `json:"confidence"`
	SampleCount    int      `json:"sample_count"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// StageError records the single terminal error of a triage run
type StageError struct {
	Message   string
	Stage     string
	Timestamp time.Time
}

// MaxRetrievedContext caps the total retrieved documents carried in a state
const MaxRetrievedContext = 15

// TriageState is threaded through every pipeline stage. Stages never mutate
// a received state in place; each returns a merged copy.
type TriageState struct {
	SessionID        string
	Email            EmailData
	Classification   *Classification
	Summary          *Summary
	ReplyDraft       *ReplyDraft
	RetrievedContext []RetrievedDoc
	ToneProfile      *ToneProfile
	Metadata         map[string]interface{}
	Err              *StageError
	CurrentStep      string
	Progress         int
}

// Clone returns a copy of the state safe for a stage to extend. Slice and map
// fields are copied so the previous state stays unchanged.
func (s TriageState) Clone() TriageState {
	out := s
	out.RetrievedContext = make([]RetrievedDoc, len(s.RetrievedContext))
	copy(out.RetrievedContext, s.RetrievedContext)
	out.Metadata = make(map[string]interface{}, len(s.Metadata))
	for k, v := range s.Metadata {
		out.Metadata[k] = v
	}
	return out
}

// Failed reports whether a terminal error has been recorded
func (s TriageState) Failed() bool {
	return s.Err != nil
}

// Status is the caller-visible outcome of a triage run
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// TriageResult is the subset of the final state returned to the caller and
// persisted to the session store.
type TriageResult struct {
	SessionID      string          `json:"session_id"`
	EmailID        string          `json:"email_id"`
	Status         Status          `json:"status"`
	Classification *Classification `json:"classification,omitempty"`
	Summary        *Summary        `json:"summary,omitempty"`
	ReplyDraft     *ReplyDraft     `json:"reply_draft,omitempty"`
	Error          string          `json:"error,omitempty"`
	CompletedAt    time.Time       `json:"completed_at"`
}

// Event is a lifecycle notification emitted by the pipeline. Stages return
// events alongside state; a single dispatcher at the engine boundary
// publishes them.
type Event struct {
	Name       string
	Payload    map[string]interface{}
	OccurredAt time.Time
}

// Lifecycle event names
const (
	EventTriageStarted   = "email.triage.started"
	EventTriageCompleted = "email.triage.completed"
	EventTriageFailed    = "email.triage.failed"
)
