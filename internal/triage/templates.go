package triage

import (
	"github.com/mikey/llm-email-triage/internal/core"
)

// ReplyTemplate is a static reply skeleton used when the model is
// unavailable and as the base the drafting prompt is built around.
type ReplyTemplate struct {
	Subject   string
	Body      string
	Tone      string
	NextSteps []string
}

// Template selection is a fixed four-level fallback chain: priority,
// then category, then the "normal" template, then a hardcoded literal.
// This is deliberate business policy: the system must always be able to
// produce a reply draft, whatever inputs are missing.
var priorityTemplates = map[core.Priority]ReplyTemplate{
	core.PriorityUrgent: {
		Subject: "Re: %s — we're on it",
		Body: "Thank you for flagging this. We understand this is urgent and have escalated it " +
			"to our on-call team. We will update you as soon as we know more.",
		Tone:      "urgent-professional",
		NextSteps: []string{"escalate to on-call", "send status update within 1 hour"},
	},
	core.PriorityHigh: {
		Subject: "Re: %s",
		Body: "Thank you for reaching out. We've prioritized your request and a member of our " +
			"team will follow up with you shortly.",
		Tone:      "professional",
		NextSteps: []string{"assign to support engineer", "respond within 4 hours"},
	},
}

var categoryTemplates = map[core.Category]ReplyTemplate{
	core.CategoryBugReport: {
		Subject: "Re: %s — issue received",
		Body: "Thank you for the detailed report. We've logged the issue and our engineering " +
			"team is investigating. We'll let you know when we have a fix or need more information.",
		Tone:      "professional",
		NextSteps: []string{"file engineering ticket", "reproduce the issue"},
	},
	core.CategoryFeatureRequest: {
		Subject: "Re: %s — thanks for the suggestion",
		Body: "Thanks for the suggestion! We've shared it with our product team for " +
			"consideration in our roadmap planning.",
		Tone:      "friendly",
		NextSteps: []string{"forward to product team"},
	},
	core.CategoryPraise: {
		Subject: "Re: %s",
		Body: "Thank you so much for the kind words! We've shared your feedback with the team — " +
			"it means a lot.",
		Tone:      "warm",
		NextSteps: []string{"share with team"},
	},
	core.CategoryComplaint: {
		Subject: "Re: %s — we hear you",
		Body: "We're sorry to hear about your experience. Your feedback has been escalated and " +
			"we're committed to making this right.",
		Tone:      "empathetic",
		NextSteps: []string{"escalate to support lead", "follow up within 24 hours"},
	},
}

var normalTemplate = ReplyTemplate{
	Subject:   "Re: %s",
	Body:      "Thank you for contacting us. We've received your message and will get back to you soon.",
	Tone:      "professional",
	NextSteps: []string{"triage and assign"},
}

// hardcodedReplyBody is the final rung of the fallback chain
const hardcodedReplyBody = "Thank you for your email. We have received it and will respond as soon as possible."

// selectBaseTemplate walks the fallback chain and always returns a template
func selectBaseTemplate(classification *core.Classification) ReplyTemplate {
	if classification != nil {
		if t, ok := priorityTemplates[classification.Priority]; ok {
			return t
		}
		if t, ok := categoryTemplates[classification.Category]; ok {
			return t
		}
	}
	if normalTemplate.Body != "" {
		return normalTemplate
	}
	return ReplyTemplate{
		Subject: "Re: %s",
		Body:    hardcodedReplyBody,
		Tone:    "professional",
	}
}
