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

// Classifier produces a structured classification for an email via the LLM.
// It never returns an error: any call or parse failure yields the fixed
// fallback classification.
type Classifier struct {
	llm           core.LLMClient
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
	maxBodySize   int
}

// NewClassifier creates a new classification agent
func NewClassifier(llm core.LLMClient, logger *zap.Logger, textProcessor *utils.TextProcessor, maxBodySize int) *Classifier {
	return &Classifier{
		llm:           llm,
		logger:        logger,
		textProcessor: textProcessor,
		maxBodySize:   maxBodySize,
	}
}

const classifyPromptFormat = `You are an email triage system. Classify the following support email.
Respond with a JSON object containing:
- priority: one of "urgent", "high", "normal", "low"
- category: one of "bug_report", "feature_request", "question", "complaint", "praise", "other"
- confidence: number between 0 and 1
- reasoning: string (brief explanation of the classification)

%sEmail:
From: %s
Subject: %s
Body:
%s

Respond only with the JSON object and nothing else.`

// FallbackClassification is returned whenever the model call or response
// parsing fails.
func FallbackClassification() core.Classification {
	return core.Classification{
		Priority:   core.PriorityNormal,
		Category:   core.CategoryOther,
		Confidence: 0.0,
		Reasoning:  "classification failed, using fallback",
	}
}

// Classify analyzes an email and returns its classification. Retrieved
// classification examples, when present, are prepended as few-shot context.
func (c *Classifier) Classify(ctx context.Context, email *core.EmailData, examples []core.RetrievedDoc) core.Classification {
	body := c.textProcessor.ProcessText(email.Body, c.maxBodySize)
	prompt := fmt.Sprintf(classifyPromptFormat,
		formatExamples(examples, "Similar previously classified emails:"),
		email.Metadata.From, email.Metadata.Subject, body)

	response, err := c.llm.Invoke(ctx, []core.Message{
		{Role: core.RoleSystem, Content: "You are an email triage system. Respond only with JSON."},
		{Role: core.RoleUser, Content: prompt},
	}, core.InvokeOptions{Temperature: 0.1, MaxTokens: 500})
	if err != nil {
		c.logger.Warn("Classification call failed, using fallback",
			zap.String("email_id", email.ID),
			zap.Error(err))
		return FallbackClassification()
	}

	classification, err := parseClassification(response)
	if err != nil {
		c.logger.Warn("Failed to parse classification response, using fallback",
			zap.String("email_id", email.ID),
			zap.Error(err))
		return FallbackClassification()
	}
	return classification
}

func parseClassification(response string) (core.Classification, error) {
	raw, err := utils.ExtractJSON(response)
	if err != nil {
		return core.Classification{}, err
	}

	var parsed core.Classification
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return core.Classification{}, fmt.Errorf("failed to parse classification JSON: %w", err)
	}

	// Normalize out-of-vocabulary values rather than trusting the model
	if !validPriority(parsed.Priority) {
		parsed.Priority = core.PriorityNormal
	}
	if !validCategory(parsed.Category) {
		parsed.Category = core.CategoryOther
	}
	if parsed.Confidence < 0 {
		parsed.Confidence = 0
	}
	if parsed.Confidence > 1 {
		parsed.Confidence = 1
	}
	return parsed, nil
}

func validPriority(p core.Priority) bool {
	switch p {
	case core.PriorityUrgent, core.PriorityHigh, core.PriorityNormal, core.PriorityLow:
		return true
	}
	return false
}

func validCategory(c core.Category) bool {
	switch c {
	case core.CategoryBugReport, core.CategoryFeatureRequest, core.CategoryQuestion,
		core.CategoryComplaint, core.CategoryPraise, core.CategoryOther:
		return true
	}
	return false
}

// formatExamples renders retrieved documents as a prompt section. Returns an
// empty string when there are no documents so the prompt stays clean.
func formatExamples(docs []core.RetrievedDoc, header string) string {
	if len(docs) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	for i, doc := range docs {
		fmt.Fprintf(&b, "%d. %s\n", i+1, doc.Content)
	}
	b.WriteString("\n")
	return b.String()
}
