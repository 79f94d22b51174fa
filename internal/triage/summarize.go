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

// Summarizer extracts the problem/context/ask structure of an email via the
// LLM. The RAG variant first looks up similar historical summaries and feeds
// them to the model as few-shot context; when that retrieval fails the plain
// variant is used transparently.
type Summarizer struct {
	llm           core.LLMClient
	vector        core.VectorRepository
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
	maxBodySize   int
	maxChars      int
}

// NewSummarizer creates a new summarization agent. The vector repository is
// optional; without one only the plain variant is available.
func NewSummarizer(llm core.LLMClient, vector core.VectorRepository, logger *zap.Logger, textProcessor *utils.TextProcessor, maxBodySize, maxChars int) *Summarizer {
	return &Summarizer{
		llm:           llm,
		vector:        vector,
		logger:        logger,
		textProcessor: textProcessor,
		maxBodySize:   maxBodySize,
		maxChars:      maxChars,
	}
}

const summarizePromptFormat = `You are an email triage system. Summarize the following support email.
Respond with a JSON object containing:
- problem: string (the core problem the sender describes)
- context: string (relevant background the sender provides)
- ask: string (what the sender wants to happen)
- summary: string (one-paragraph summary, at most %d characters)

%sEmail:
From: %s
Subject: %s
Body:
%s

Respond only with the JSON object and nothing else.`

// FallbackSummary is the deterministic substitute used when the model call
// or parsing fails. The summary field degrades to a truncated first sentence
// of the body.
func FallbackSummary(body string) core.Summary {
	return core.Summary{
		Problem: "unable to identify problem",
		Context: "unable to identify context",
		Ask:     "unable to identify ask",
		Summary: firstSentence(body, 200),
	}
}

// Summarize produces a summary using only the email itself
func (s *Summarizer) Summarize(ctx context.Context, email *core.EmailData) core.Summary {
	return s.summarize(ctx, email, nil)
}

// SummarizeWithRAG queries the email-summaries namespace for similar
// historical emails and prepends them as few-shot context. Retrieval
// failures degrade to the plain variant.
func (s *Summarizer) SummarizeWithRAG(ctx context.Context, email *core.EmailData) core.Summary {
	if s.vector == nil {
		return s.summarize(ctx, email, nil)
	}

	docs, err := s.vector.Search(ctx, core.SearchQuery{
		Query:     email.Metadata.Subject + "\n" + email.Body,
		Namespace: NamespaceEmailSummaries,
		Purpose:   "summarization",
		TopK:      3,
		MinScore:  0.7,
	})
	if err != nil {
		s.logger.Warn("Summary example retrieval failed, falling back to plain summarization",
			zap.String("email_id", email.ID),
			zap.Error(err))
		return s.summarize(ctx, email, nil)
	}
	return s.summarize(ctx, email, docs)
}

func (s *Summarizer) summarize(ctx context.Context, email *core.EmailData, examples []core.RetrievedDoc) core.Summary {
	body := s.textProcessor.ProcessText(email.Body, s.maxBodySize)
	prompt := fmt.Sprintf(summarizePromptFormat, s.maxChars,
		formatExamples(examples, "Summaries of similar past emails:"),
		email.Metadata.From, email.Metadata.Subject, body)

	response, err := s.llm.Invoke(ctx, []core.Message{
		{Role: core.RoleSystem, Content: "You are an email triage system. Respond only with JSON."},
		{Role: core.RoleUser, Content: prompt},
	}, core.InvokeOptions{Temperature: 0.2, MaxTokens: 800})
	if err != nil {
		s.logger.Warn("Summarization call failed, using fallback",
			zap.String("email_id", email.ID),
			zap.Error(err))
		return FallbackSummary(email.Body)
	}

	summary, err := parseSummary(response)
	if err != nil {
		s.logger.Warn("Failed to parse summary response, using fallback",
			zap.String("email_id", email.ID),
			zap.Error(err))
		return FallbackSummary(email.Body)
	}
	return summary
}

func parseSummary(response string) (core.Summary, error) {
	raw, err := utils.ExtractJSON(response)
	if err != nil {
		return core.Summary{}, err
	}

	var parsed core.Summary
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return core.Summary{}, fmt.Errorf("failed to parse summary JSON: %w", err)
	}
	return parsed, nil
}

// firstSentence returns the first sentence of text, hard-capped at max bytes
func firstSentence(text string, max int) string {
	text = strings.TrimSpace(text)
	if idx := strings.IndexAny(text, ".!?"); idx >= 0 {
		text = text[:idx+1]
	}
	if len(text) > max {
		text = text[:max] + "..."
	}
	return text
}
