package triage

import (
	"regexp"
	"strings"

	"github.com/mikey/llm-email-triage/internal/core"
)

// PrefilterResult is the verdict of the cheap pre-triage pass
type PrefilterResult struct {
	ShouldProcess bool
	Priority      core.Priority
	Category      core.Category
	Confidence    float64
	Reasoning     string
}

// matcher inspects an email and either returns a conclusive result or nil
type matcher struct {
	name string
	fn   func(subject, from, body string) *PrefilterResult
}

// Prefilter decides whether an email is worth running the full pipeline on.
// Matchers run in a fixed priority order; the first conclusive result wins.
type Prefilter struct {
	matchers []matcher
}

var (
	spamRe         = regexp.MustCompile(`(?i)(viagra|lottery|winner|claim your prize|wire transfer|nigerian prince|crypto giveaway)`)
	notificationRe = regexp.MustCompile(`(?i)(no-?reply@|do-?not-?reply|notifications?@|automated message|this is an automated)`)
	meetingRe      = regexp.MustCompile(`(?i)(calendar invite|meeting request|invite\.ics|has invited you|zoom\.us/j/|meet\.google\.com)`)
	urgentRe       = regexp.MustCompile(`(?i)(urgent|asap|emergency|critical|immediately|production.{0,20}down)`)
	promoRe        = regexp.MustCompile(`(?i)(unsubscribe|% off|limited time offer|flash sale|special offer|promo code)`)
)

// NewPrefilter creates a prefilter with the standard matcher ordering:
// spam, notification, meeting, urgent, promotional. Spam detection always
// takes precedence over the later matchers.
func NewPrefilter() *Prefilter {
	return &Prefilter{
		matchers: []matcher{
			{name: "spam", fn: matchSpam},
			{name: "notification", fn: matchNotification},
			{name: "meeting", fn: matchMeeting},
			{name: "urgent", fn: matchUrgent},
			{name: "promotional", fn: matchPromotional},
		},
	}
}

// Check classifies an email without any model call. Empty fields are
// tolerated; no matcher fires and the default result is returned.
func (p *Prefilter) Check(email *core.EmailData) PrefilterResult {
	subject := email.Metadata.Subject
	from := email.Metadata.From
	body := email.Body

	for _, m := range p.matchers {
		if result := m.fn(subject, from, body); result != nil {
			return *result
		}
	}

	return PrefilterResult{
		ShouldProcess: true,
		Priority:      core.PriorityNormal,
		Category:      core.CategoryOther,
		Confidence:    0.5,
		Reasoning:     "no prefilter pattern matched, processing as general",
	}
}

func matchSpam(subject, from, body string) *PrefilterResult {
	if spamRe.MatchString(subject) || spamRe.MatchString(body) {
		return &PrefilterResult{
			ShouldProcess: false,
			Priority:      core.PriorityLow,
			Category:      core.CategoryOther,
			Confidence:    0.9,
			Reasoning:     "matched spam pattern",
		}
	}
	return nil
}

func matchNotification(subject, from, body string) *PrefilterResult {
	if notificationRe.MatchString(from) || notificationRe.MatchString(body) {
		return &PrefilterResult{
			ShouldProcess: false,
			Priority:      core.PriorityLow,
			Category:      core.CategoryOther,
			Confidence:    0.8,
			Reasoning:     "automated notification sender",
		}
	}
	return nil
}

func matchMeeting(subject, from, body string) *PrefilterResult {
	if meetingRe.MatchString(subject) || meetingRe.MatchString(body) {
		return &PrefilterResult{
			ShouldProcess: true,
			Priority:      core.PriorityNormal,
			Category:      core.CategoryQuestion,
			Confidence:    0.7,
			Reasoning:     "meeting-related content",
		}
	}
	return nil
}

func matchUrgent(subject, from, body string) *PrefilterResult {
	// Subject hits are a stronger signal than body hits
	if urgentRe.MatchString(subject) || urgentRe.MatchString(body) {
		confidence := 0.7
		if urgentRe.MatchString(subject) {
			confidence = 0.85
		}
		return &PrefilterResult{
			ShouldProcess: true,
			Priority:      core.PriorityUrgent,
			Category:      core.CategoryOther,
			Confidence:    confidence,
			Reasoning:     "urgent language detected",
		}
	}
	return nil
}

func matchPromotional(subject, from, body string) *PrefilterResult {
	if promoRe.MatchString(subject) || promoRe.MatchString(body) {
		return &PrefilterResult{
			ShouldProcess: false,
			Priority:      core.PriorityLow,
			Category:      core.CategoryOther,
			Confidence:    0.75,
			Reasoning:     "promotional content",
		}
	}
	return nil
}

// normalize lowercases and collapses whitespace for keyword scanning
func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
