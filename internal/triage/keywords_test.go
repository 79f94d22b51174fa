package triage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mikey/llm-email-triage/internal/core"
)

func TestKeywordClassifier_UrgentOutage(t *testing.T) {
	c := NewKeywordClassifier()

	result := c.Classify(testEmail("1", "URGENT: server down", "Production is down, we need an immediate fix."))

	assert.Equal(t, core.PriorityUrgent, result.Priority)
	assert.Equal(t, core.CategoryBugReport, result.Category)
	assert.Equal(t, 0.4, result.Confidence)
}

func TestKeywordClassifier_SpamWinsOverUrgent(t *testing.T) {
	c := NewKeywordClassifier()

	result := c.Classify(testEmail("1", "Urgent lottery notice", "You won! Unsubscribe below."))

	assert.Equal(t, core.PriorityLow, result.Priority)
}

func TestKeywordClassifier_ImportantDeadline(t *testing.T) {
	c := NewKeywordClassifier()

	result := c.Classify(testEmail("1", "Contract deadline next week", "This is a priority for our team."))

	assert.Equal(t, core.PriorityHigh, result.Priority)
}

func TestKeywordClassifier_Categories(t *testing.T) {
	c := NewKeywordClassifier()

	tests := []struct {
		name    string
		subject string
		body    string
		want    core.Category
	}{
		{"feature request", "Add support for SSO", "It would be nice to log in with okta.", core.CategoryFeatureRequest},
		{"complaint", "Very unhappy", "This is unacceptable, I want a refund.", core.CategoryComplaint},
		{"praise", "Well done", "Thank you, great job on the new release.", core.CategoryPraise},
		{"question", "Billing", "How do I change my payment method?", core.CategoryQuestion},
		{"other", "Hello", "Just checking in.", core.CategoryOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := c.Classify(testEmail("1", tt.subject, tt.body))
			assert.Equal(t, tt.want, result.Category)
		})
	}
}

func TestExtractKeywords_FrequencyOrder(t *testing.T) {
	keywords := ExtractKeywords("database timeout database connection database timeout export")

	assert.Equal(t, []string{"database", "timeout", "connection", "export"}, keywords)
}

func TestExtractKeywords_SkipsStopwordsAndShortWords(t *testing.T) {
	keywords := ExtractKeywords("the api is up and we do ok")

	assert.Equal(t, []string{"api"}, keywords)
}

func TestExtractKeywords_Cap(t *testing.T) {
	text := ""
	for _, w := range []string{
		"alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf", "hotel",
		"india", "juliett", "kilo", "lima", "mike", "november", "oscar", "papa", "quebec",
	} {
		text += w + " "
	}

	keywords := ExtractKeywords(text)

	assert.Len(t, keywords, maxExtractedKeywords)
}
