package triage

import (
	"github.com/mikey/llm-email-triage/internal/core"
)

// toneRule maps a (formality, warmth, urgency) combination observed in a
// user's tone profile to a canonical tone label. This is a deterministic
// override applied on top of the model's own tone guess — the model still
// names a tone, but a sufficiently confident profile wins.
type toneRule struct {
	formality string
	warmth    string
	urgency   string
	tone      string
}

// minToneConfidence is the profile confidence below which the override
// table is skipped and the model's tone stands.
const minToneConfidence = 0.5

// Documented tone-override matrix. First matching rule wins; "*" matches
// any value.
var toneRules = []toneRule{
	{"formal", "warm", "*", "warm-professional"},
	{"formal", "cold", "*", "formal"},
	{"formal", "*", "high", "urgent-professional"},
	{"formal", "*", "*", "professional"},
	{"casual", "warm", "*", "friendly"},
	{"casual", "*", "high", "direct-casual"},
	{"casual", "*", "*", "casual"},
	{"*", "warm", "*", "warm"},
	{"*", "*", "high", "direct"},
}

// applyToneAdjustments overrides the draft's tone from the profile rule
// table. Drafts pass through untouched when the profile is missing or its
// confidence is below minToneConfidence.
func applyToneAdjustments(draft core.ReplyDraft, profile *core.ToneProfile) core.ReplyDraft {
	if profile == nil || profile.Confidence < minToneConfidence {
		return draft
	}

	for _, rule := range toneRules {
		if matchesRule(rule.formality, profile.Formality) &&
			matchesRule(rule.warmth, profile.Warmth) &&
			matchesRule(rule.urgency, profile.Urgency) {
			draft.Tone = rule.tone
			break
		}
	}
	return draft
}

func matchesRule(pattern, value string) bool {
	return pattern == "*" || pattern == value
}
