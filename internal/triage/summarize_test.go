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

const summaryResponse = `{"problem": "export times out", "context": "started after upgrade", "ask": "fix the export", "summary": "Customer's CSV export times out since the last upgrade."}`

func TestSummarizer_Plain(t *testing.T) {
	llm := &stubLLM{responses: []string{summaryResponse}}
	s := NewSummarizer(llm, nil, zap.NewNop(), testTextProcessor(), 4096, 500)

	result := s.Summarize(context.Background(), testEmail("1", "Export broken", "The CSV export times out."))

	assert.Equal(t, "export times out", result.Problem)
	assert.Equal(t, "fix the export", result.Ask)
}

func TestSummarizer_FallbackOnParseFailure(t *testing.T) {
	llm := &stubLLM{responses: []string{"sorry, I cannot help with that"}}
	s := NewSummarizer(llm, nil, zap.NewNop(), testTextProcessor(), 4096, 500)

	result := s.Summarize(context.Background(), testEmail("1", "Export broken", "The CSV export times out. It worked last week."))

	assert.Equal(t, "unable to identify problem", result.Problem)
	assert.Equal(t, "unable to identify context", result.Context)
	assert.Equal(t, "unable to identify ask", result.Ask)
	assert.Equal(t, "The CSV export times out.", result.Summary, "fallback summary is the first sentence of the body")
}

func TestSummarizer_RAGFeedsExamplesToPrompt(t *testing.T) {
	llm := &stubLLM{responses: []string{summaryResponse}}
	vector := newStubVector()
	vector.docs[NamespaceEmailSummaries] = []core.RetrievedDoc{
		{Content: "past summary: importer crashed after upgrade", Namespace: NamespaceEmailSummaries, Purpose: "summarization"},
	}
	s := NewSummarizer(llm, vector, zap.NewNop(), testTextProcessor(), 4096, 500)

	s.SummarizeWithRAG(context.Background(), testEmail("1", "Export broken", "The CSV export times out."))

	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0], "importer crashed after upgrade")
}

func TestSummarizer_RAGDegradesToPlainOnRetrievalError(t *testing.T) {
	llm := &stubLLM{responses: []string{summaryResponse}}
	vector := newStubVector()
	vector.searchErr = fmt.Errorf("connection refused")
	s := NewSummarizer(llm, vector, zap.NewNop(), testTextProcessor(), 4096, 500)

	result := s.SummarizeWithRAG(context.Background(), testEmail("1", "Export broken", "The CSV export times out."))

	assert.Equal(t, "export times out", result.Problem, "retrieval failure must not lose the summary")
	assert.Equal(t, 1, llm.callCount())
}

func TestFallbackSummary_TruncatesLongFirstSentence(t *testing.T) {
	body := ""
	for i := 0; i < 60; i++ {
		body += "word "
	}

	result := FallbackSummary(body)

	assert.LessOrEqual(t, len(result.Summary), 203)
	assert.Contains(t, result.Summary, "...")
}
