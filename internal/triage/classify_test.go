package triage

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/llm-email-triage/internal/core"
)

func newTestClassifier(llm core.LLMClient) *Classifier {
	return NewClassifier(llm, zap.NewNop(), testTextProcessor(), 4096)
}

func TestClassifier_ParsesPlainJSON(t *testing.T) {
	llm := &stubLLM{responses: []string{
		`{"priority": "urgent", "category": "bug_report", "confidence": 0.92, "reasoning": "production outage"}`,
	}}
	c := newTestClassifier(llm)

	result := c.Classify(context.Background(), testEmail("1", "Down", "prod is down"), nil)

	assert.Equal(t, core.PriorityUrgent, result.Priority)
	assert.Equal(t, core.CategoryBugReport, result.Category)
	assert.InDelta(t, 0.92, result.Confidence, 1e-9)
}

func TestClassifier_ParsesFencedJSON(t *testing.T) {
	llm := &stubLLM{responses: []string{
		"Here is the classification:\n```json\n{\"priority\": \"high\", \"category\": \"question\", \"confidence\": 0.7, \"reasoning\": \"billing question\"}\n```",
	}}
	c := newTestClassifier(llm)

	result := c.Classify(context.Background(), testEmail("1", "Billing", "how much?"), nil)

	assert.Equal(t, core.PriorityHigh, result.Priority)
	assert.Equal(t, core.CategoryQuestion, result.Category)
}

func TestClassifier_FallbackOnMalformedResponse(t *testing.T) {
	llm := &stubLLM{responses: []string{"I think this email is probably urgent."}}
	c := newTestClassifier(llm)

	result := c.Classify(context.Background(), testEmail("1", "Hello", "hi"), nil)

	assert.Equal(t, FallbackClassification(), result)
}

func TestClassifier_FallbackOnInvokeError(t *testing.T) {
	llm := &stubLLM{err: fmt.Errorf("rate limited")}
	c := newTestClassifier(llm)

	result := c.Classify(context.Background(), testEmail("1", "Hello", "hi"), nil)

	assert.Equal(t, core.PriorityNormal, result.Priority)
	assert.Equal(t, core.CategoryOther, result.Category)
	assert.Equal(t, 0.0, result.Confidence)
}

func TestClassifier_NormalizesOutOfVocabularyValues(t *testing.T) {
	llm := &stubLLM{responses: []string{
		`{"priority": "super-urgent", "category": "rant", "confidence": 1.7, "reasoning": "x"}`,
	}}
	c := newTestClassifier(llm)

	result := c.Classify(context.Background(), testEmail("1", "Hello", "hi"), nil)

	assert.Equal(t, core.PriorityNormal, result.Priority)
	assert.Equal(t, core.CategoryOther, result.Category)
	assert.Equal(t, 1.0, result.Confidence, "confidence must be clamped to [0,1]")
}

func TestClassifier_ExamplesAppearInPrompt(t *testing.T) {
	llm := &stubLLM{responses: []string{
		`{"priority": "normal", "category": "other", "confidence": 0.5, "reasoning": "x"}`,
	}}
	c := newTestClassifier(llm)

	examples := []core.RetrievedDoc{{Content: "past email about invoices was a question", Purpose: "classification"}}
	c.Classify(context.Background(), testEmail("1", "Invoices", "where are they?"), examples)

	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0], "past email about invoices was a question")
}
