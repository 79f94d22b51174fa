package triage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikey/llm-email-triage/internal/core"
)

func TestPrefilter_SpamIsDropped(t *testing.T) {
	p := NewPrefilter()

	result := p.Check(testEmail("1", "Claim your prize now", "You are a lottery winner!"))

	assert.False(t, result.ShouldProcess)
	assert.Equal(t, core.PriorityLow, result.Priority)
	assert.GreaterOrEqual(t, result.Confidence, 0.9)
}

func TestPrefilter_SpamBeatsUrgent(t *testing.T) {
	p := NewPrefilter()

	// Contains both urgent language and a spam pattern; spam runs first
	result := p.Check(testEmail("1", "URGENT: claim your prize", "act immediately, you are a winner"))

	assert.False(t, result.ShouldProcess, "spam matcher must take precedence over urgent")
	assert.Equal(t, "matched spam pattern", result.Reasoning)
}

func TestPrefilter_NotificationSender(t *testing.T) {
	p := NewPrefilter()

	email := testEmail("1", "Your build finished", "Build #42 passed.")
	email.Metadata.From = "no-reply@ci.example.com"
	result := p.Check(email)

	assert.False(t, result.ShouldProcess)
	assert.Equal(t, "automated notification sender", result.Reasoning)
}

func TestPrefilter_MeetingStillProcessed(t *testing.T) {
	p := NewPrefilter()

	result := p.Check(testEmail("1", "Calendar invite: planning sync", "Alice has invited you to a meeting."))

	assert.True(t, result.ShouldProcess)
	assert.Equal(t, core.CategoryQuestion, result.Category)
}

func TestPrefilter_UrgentSubjectScoresHigher(t *testing.T) {
	p := NewPrefilter()

	subjectHit := p.Check(testEmail("1", "URGENT: production down", "please take a look"))
	bodyHit := p.Check(testEmail("2", "small problem", "this is urgent, the export is failing"))

	require.True(t, subjectHit.ShouldProcess)
	require.True(t, bodyHit.ShouldProcess)
	assert.Equal(t, core.PriorityUrgent, subjectHit.Priority)
	assert.Equal(t, core.PriorityUrgent, bodyHit.Priority)
	assert.Greater(t, subjectHit.Confidence, bodyHit.Confidence)
}

func TestPrefilter_PromotionalIsDropped(t *testing.T) {
	p := NewPrefilter()

	result := p.Check(testEmail("1", "Flash sale: 50% off everything", "Use promo code SAVE50. Unsubscribe here."))

	assert.False(t, result.ShouldProcess)
}

func TestPrefilter_DefaultWhenNothingMatches(t *testing.T) {
	p := NewPrefilter()

	result := p.Check(testEmail("1", "Question about invoices", "How do I download last month's invoice?"))

	assert.True(t, result.ShouldProcess)
	assert.Equal(t, core.PriorityNormal, result.Priority)
	assert.Equal(t, core.CategoryOther, result.Category)
	assert.Equal(t, 0.5, result.Confidence)
}

func TestPrefilter_EmptyEmail(t *testing.T) {
	p := NewPrefilter()

	result := p.Check(&core.EmailData{ID: "1"})

	assert.True(t, result.ShouldProcess, "empty fields must not panic or match")
}
