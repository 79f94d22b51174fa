package triage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mikey/llm-email-triage/internal/core"
	"github.com/mikey/llm-email-triage/internal/utils"
	"go.uber.org/zap"
)

// toneFeatures is the per-email analysis extracted by the model before
// aggregation into a profile.
type toneFeatures struct {
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
}

const (
	maxProfilePhrases  = 10
	maxProfileKeywords = 15

	// confidenceSaturation is the sample count at which the sample factor
	// of the confidence heuristic saturates at 1.0
	confidenceSaturation = 10
)

// ToneLearner builds a user's communication-style profile from a batch of
// their historical emails: per-email LLM feature extraction, then majority
// vote per categorical field and capped set-union for the phrase lists.
type ToneLearner struct {
	llm           core.LLMClient
	vector        core.VectorRepository
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
	maxBodySize   int
	minSamples    int
}

// NewToneLearner creates a new tone-profile learner
func NewToneLearner(llm core.LLMClient, vector core.VectorRepository, logger *zap.Logger, textProcessor *utils.TextProcessor, maxBodySize, minSamples int) *ToneLearner {
	return &ToneLearner{
		llm:           llm,
		vector:        vector,
		logger:        logger,
		textProcessor: textProcessor,
		maxBodySize:   maxBodySize,
		minSamples:    minSamples,
	}
}

const toneExtractPromptFormat = `Analyze the communication style of the following email written by a user.
Respond with a JSON object containing these fields, each a single lowercase word:
- formality: "formal" or "casual"
- warmth: "warm", "neutral" or "cold"
- urgency: "high", "medium" or "low"
- directness: "direct" or "indirect"
- technical_level: "technical", "mixed" or "non-technical"
- emotional_tone: "positive", "neutral" or "negative"
- response_length: "short", "medium" or "long"
- greeting_style: "formal", "casual" or "none"
And two list fields:
- common_phrases: up to 5 characteristic phrases from the email
- keywords: up to 5 recurring topic words

Email:
Subject: %s
Body:
%s

Respond only with the JSON object and nothing else.`

// DefaultProfile is the low-confidence profile returned when too few
// samples are available for aggregation.
func DefaultProfile(userEmail string) *core.ToneProfile {
	return &core.ToneProfile{
		UserEmail:      userEmail,
		Formality:      "formal",
		Warmth:         "neutral",
		Urgency:        "medium",
		Directness:     "direct",
		TechnicalLevel: "mixed",
		EmotionalTone:  "neutral",
		ResponseLength: "medium",
		GreetingStyle:  "formal",
		Confidence:     0.3,
		UpdatedAt:      time.Now(),
	}
}

// LearnProfile analyzes a batch of a user's historical emails and returns
// the aggregated tone profile. Below the minimum sample threshold a default
// profile is returned instead of attempting aggregation. Individual
// extraction failures are skipped, not fatal.
func (l *ToneLearner) LearnProfile(ctx context.Context, userEmail string, emails []core.EmailData) (*core.ToneProfile, error) {
	if l.llm == nil {
		return nil, fmt.Errorf("no LLM client configured for tone learning")
	}
	if len(emails) < l.minSamples {
		l.logger.Info("Too few samples for tone learning, returning default profile",
			zap.String("user", userEmail),
			zap.Int("samples", len(emails)),
			zap.Int("min_samples", l.minSamples))
		return DefaultProfile(userEmail), nil
	}

	samples := make([]toneFeatures, 0, len(emails))
	for _, email := range emails {
		features, err := l.extractFeatures(ctx, &email)
		if err != nil {
			l.logger.Warn("Tone feature extraction failed for email, skipping",
				zap.String("user", userEmail),
				zap.String("email_id", email.ID),
				zap.Error(err))
			continue
		}
		samples = append(samples, features)
	}

	if len(samples) < l.minSamples {
		return DefaultProfile(userEmail), nil
	}

	profile := aggregateFeatures(userEmail, samples)
	return &profile, nil
}

// StoreProfile persists a profile wholesale into the tone-profile namespace,
// replacing any previous version for the user. Failures are the caller's
// concern; the triage pipeline treats them as best-effort.
func (l *ToneLearner) StoreProfile(ctx context.Context, profile *core.ToneProfile) error {
	if l.vector == nil {
		return fmt.Errorf("no vector repository configured")
	}

	payload, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal tone profile: %w", err)
	}

	doc := core.VectorDocument{
		ID: "tone-profile-" + profile.UserEmail,
		Content: fmt.Sprintf("Communication style of %s: %s, %s warmth, %s urgency, %s",
			profile.UserEmail, profile.Formality, profile.Warmth, profile.Urgency, profile.Directness),
		Metadata: map[string]string{
			"user_email": profile.UserEmail,
			"profile":    string(payload),
			"updated_at": profile.UpdatedAt.Format(time.RFC3339),
		},
	}
	return l.vector.Upsert(ctx, NamespaceToneProfiles, []core.VectorDocument{doc})
}

func (l *ToneLearner) extractFeatures(ctx context.Context, email *core.EmailData) (toneFeatures, error) {
	body := l.textProcessor.ProcessText(email.Body, l.maxBodySize)
	prompt := fmt.Sprintf(toneExtractPromptFormat, email.Metadata.Subject, body)

	response, err := l.llm.Invoke(ctx, []core.Message{
		{Role: core.RoleSystem, Content: "You analyze email communication style. Respond only with JSON."},
		{Role: core.RoleUser, Content: prompt},
	}, core.InvokeOptions{Temperature: 0.1, MaxTokens: 500})
	if err != nil {
		return toneFeatures{}, err
	}

	raw, err := utils.ExtractJSON(response)
	if err != nil {
		return toneFeatures{}, err
	}
	var features toneFeatures
	if err := json.Unmarshal([]byte(raw), &features); err != nil {
		return toneFeatures{}, fmt.Errorf("failed to parse tone features: %w", err)
	}
	return features, nil
}

// aggregateFeatures folds per-email features into one profile: majority
// vote per categorical field (ties broken by first occurrence) and capped
// set-union for the lists.
func aggregateFeatures(userEmail string, samples []toneFeatures) core.ToneProfile {
	n := len(samples)
	pick := func(get func(toneFeatures) string) string {
		values := make([]string, n)
		for i, s := range samples {
			values[i] = get(s)
		}
		return majorityVote(values)
	}

	var phrases, keywords []string
	for _, s := range samples {
		phrases = unionCapped(phrases, s.CommonPhrases, maxProfilePhrases)
		keywords = unionCapped(keywords, s.Keywords, maxProfileKeywords)
	}

	return core.ToneProfile{
		UserEmail:      userEmail,
		Formality:      pick(func(f toneFeatures) string { return f.Formality }),
		Warmth:         pick(func(f toneFeatures) string { return f.Warmth }),
		Urgency:        pick(func(f toneFeatures) string { return f.Urgency }),
		Directness:     pick(func(f toneFeatures) string { return f.Directness }),
		TechnicalLevel: pick(func(f toneFeatures) string { return f.TechnicalLevel }),
		EmotionalTone:  pick(func(f toneFeatures) string { return f.EmotionalTone }),
		ResponseLength: pick(func(f toneFeatures) string { return f.ResponseLength }),
		GreetingStyle:  pick(func(f toneFeatures) string { return f.GreetingStyle }),
		CommonPhrases:  phrases,
		Keywords:       keywords,
		Confidence:     profileConfidence(n),
		SampleCount:    n,
		UpdatedAt:      time.Now(),
	}
}

// majorityVote returns the most frequent value; ties are broken by which
// value was seen first.
func majorityVote(values []string) string {
	counts := make(map[string]int)
	order := make([]string, 0, len(values))
	for _, v := range values {
		if _, seen := counts[v]; !seen {
			order = append(order, v)
		}
		counts[v]++
	}

	best := ""
	bestCount := -1
	for _, v := range order {
		if counts[v] > bestCount {
			best = v
			bestCount = counts[v]
		}
	}
	return best
}

// unionCapped appends new unique items up to the cap
func unionCapped(existing, additions []string, limit int) []string {
	seen := make(map[string]bool, len(existing))
	for _, v := range existing {
		seen[v] = true
	}
	for _, v := range additions {
		if len(existing) >= limit {
			break
		}
		if v == "" || seen[v] {
			continue
		}
		existing = append(existing, v)
		seen[v] = true
	}
	return existing
}

// profileConfidence is the documented sample-count heuristic: a sample
// factor that saturates at 10 samples, times a consistency factor that is
// lower for a single sample.
func profileConfidence(sampleCount int) float64 {
	sampleFactor := float64(sampleCount) / confidenceSaturation
	if sampleFactor > 1 {
		sampleFactor = 1
	}
	consistency := 0.5
	if sampleCount > 1 {
		consistency = 0.8
	}
	return sampleFactor * consistency
}

// newDocumentID generates an id for stored vector documents
func newDocumentID() string {
	return uuid.NewString()
}
