package triage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mikey/llm-email-triage/internal/core"
	"github.com/mikey/llm-email-triage/internal/utils"
	"go.uber.org/zap"
)

// ReplyDrafter generates a reply draft for an email. Degradation is a
// three-tier ladder: tone-adapted generation, then plain generation, then a
// static template. A draft is always produced; only its quality degrades.
type ReplyDrafter struct {
	llm                core.LLMClient
	vector             core.VectorRepository
	logger             *zap.Logger
	textProcessor      *utils.TextProcessor
	maxBodySize        int
	adaptationStrength float64
}

// NewReplyDrafter creates a new reply-drafting agent. Both llm and vector
// may be nil; the drafter degrades accordingly.
func NewReplyDrafter(llm core.LLMClient, vector core.VectorRepository, logger *zap.Logger, textProcessor *utils.TextProcessor, maxBodySize int, adaptationStrength float64) *ReplyDrafter {
	return &ReplyDrafter{
		llm:                llm,
		vector:             vector,
		logger:             logger,
		textProcessor:      textProcessor,
		maxBodySize:        maxBodySize,
		adaptationStrength: adaptationStrength,
	}
}

const replyPromptFormat = `You are drafting a reply to a support email on behalf of the support team.

Email classification: priority=%s, category=%s
Email summary: %s

%s%sUse this base template as a starting point, adjusting freely to fit the email:
Subject: %s
Body: %s

Respond with a JSON object containing:
- subject: string (reply subject line)
- body: string (full reply body)
- tone: string (one or two words naming the tone you used)
- next_steps: array of strings (concrete follow-up actions for the support team)

Email to reply to:
From: %s
Subject: %s
Body:
%s

Respond only with the JSON object and nothing else.`

// DraftReply produces a reply draft. Missing classification or summary
// inputs are substituted with the documented fallbacks and the agent is
// still invoked — a missing upstream stage never skips drafting.
func (d *ReplyDrafter) DraftReply(ctx context.Context, email *core.EmailData, classification *core.Classification, summary *core.Summary, profile *core.ToneProfile) core.ReplyDraft {
	if classification == nil {
		fallback := FallbackClassification()
		classification = &fallback
	}
	if summary == nil {
		fallback := FallbackSummary(email.Body)
		summary = &fallback
	}

	template := selectBaseTemplate(classification)

	// Rung 3: no agent configured at all
	if d.llm == nil {
		return fillTemplate(template, email)
	}

	// Rung 1: tone-adapted generation
	if profile != nil {
		patterns := d.fetchReplyPatterns(ctx, email, classification)
		if draft, err := d.generate(ctx, email, classification, summary, profile, patterns, template); err == nil {
			return applyToneAdjustments(draft, profile)
		} else {
			d.logger.Warn("Tone-adapted reply generation failed, trying basic generation",
				zap.String("email_id", email.ID),
				zap.Error(err))
		}
	}

	// Rung 2: plain generation without tone context
	if draft, err := d.generate(ctx, email, classification, summary, nil, nil, template); err == nil {
		return draft
	} else {
		d.logger.Warn("Reply generation failed, using template fallback",
			zap.String("email_id", email.ID),
			zap.Error(err))
	}

	// Rung 3: static template
	return fillTemplate(template, email)
}

// fetchReplyPatterns retrieves past replies with matching priority and
// category. Failures yield an empty set; pattern context is optional.
func (d *ReplyDrafter) fetchReplyPatterns(ctx context.Context, email *core.EmailData, classification *core.Classification) []core.RetrievedDoc {
	if d.vector == nil {
		return nil
	}
	docs, err := d.vector.Search(ctx, core.SearchQuery{
		Query:     email.Metadata.Subject + "\n" + email.Body,
		Namespace: NamespaceReplyPatterns,
		Purpose:   "reply",
		TopK:      3,
		MinScore:  0.7,
		Filter: map[string]string{
			"priority": string(classification.Priority),
			"category": string(classification.Category),
		},
	})
	if err != nil {
		d.logger.Debug("Reply pattern retrieval failed",
			zap.String("email_id", email.ID),
			zap.Error(err))
		return nil
	}
	return docs
}

func (d *ReplyDrafter) generate(ctx context.Context, email *core.EmailData, classification *core.Classification, summary *core.Summary, profile *core.ToneProfile, patterns []core.RetrievedDoc, template ReplyTemplate) (core.ReplyDraft, error) {
	body := d.textProcessor.ProcessText(email.Body, d.maxBodySize)
	prompt := fmt.Sprintf(replyPromptFormat,
		classification.Priority, classification.Category, summary.Summary,
		d.formatToneContext(profile),
		formatExamples(patterns, "Past replies to similar emails:"),
		fmt.Sprintf(template.Subject, email.Metadata.Subject), template.Body,
		email.Metadata.From, email.Metadata.Subject, body)

	response, err := d.llm.Invoke(ctx, []core.Message{
		{Role: core.RoleSystem, Content: "You draft support email replies. Respond only with JSON."},
		{Role: core.RoleUser, Content: prompt},
	}, core.InvokeOptions{Temperature: 0.4, MaxTokens: 1000})
	if err != nil {
		return core.ReplyDraft{}, err
	}

	raw, err := utils.ExtractJSON(response)
	if err != nil {
		return core.ReplyDraft{}, err
	}
	var draft core.ReplyDraft
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		return core.ReplyDraft{}, fmt.Errorf("failed to parse reply draft JSON: %w", err)
	}
	if draft.Body == "" {
		return core.ReplyDraft{}, fmt.Errorf("reply draft has empty body")
	}
	return draft, nil
}

// formatToneContext renders the user's tone profile as a prompt section with
// the configured adaptation strength.
func (d *ReplyDrafter) formatToneContext(profile *core.ToneProfile) string {
	if profile == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Mimic the user's communication style with strength %.1f (0 = ignore, 1 = imitate exactly):\n", d.adaptationStrength)
	fmt.Fprintf(&b, "- formality: %s, warmth: %s, urgency: %s, directness: %s\n",
		profile.Formality, profile.Warmth, profile.Urgency, profile.Directness)
	fmt.Fprintf(&b, "- technical level: %s, emotional tone: %s, response length: %s, greeting style: %s\n",
		profile.TechnicalLevel, profile.EmotionalTone, profile.ResponseLength, profile.GreetingStyle)
	if len(profile.CommonPhrases) > 0 {
		fmt.Fprintf(&b, "- common phrases: %s\n", strings.Join(profile.CommonPhrases, "; "))
	}
	b.WriteString("\n")
	return b.String()
}

// fillTemplate materializes a static template for an email
func fillTemplate(template ReplyTemplate, email *core.EmailData) core.ReplyDraft {
	return core.ReplyDraft{
		Subject:   fmt.Sprintf(template.Subject, email.Metadata.Subject),
		Body:      template.Body,
		Tone:      template.Tone,
		NextSteps: template.NextSteps,
	}
}
