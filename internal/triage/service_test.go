package triage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/llm-email-triage/internal/core"
)

func newTestService(t *testing.T, prefilterEnabled bool, dedup core.DedupCache) *Service {
	t.Helper()
	logger := zap.NewNop()
	drafter := NewReplyDrafter(nil, nil, logger, testTextProcessor(), 4096, 0.7)
	engine := NewEngine(newTestEnricher(nil), nil, NewKeywordClassifier(), nil, drafter, nil, nil, nil, logger)
	return NewService(NewPrefilter(), prefilterEnabled, dedup, dedup != nil, time.Hour, engine, logger)
}

func TestServiceTriage_PrefilterShortCircuitsSpam(t *testing.T) {
	service := newTestService(t, true, nil)

	result, err := service.Triage(context.Background(), testEmail("1", "Claim your prize", "lottery winner"))

	require.NoError(t, err)
	assert.Equal(t, core.StatusCompleted, result.Status)
	require.NotNil(t, result.Classification)
	assert.Equal(t, core.PriorityLow, result.Classification.Priority)
	assert.Nil(t, result.ReplyDraft, "prefiltered emails never reach the drafting stage")
}

func TestServiceTriage_PrefilterDisabledProcessesSpam(t *testing.T) {
	service := newTestService(t, false, nil)

	result, err := service.Triage(context.Background(), testEmail("1", "Claim your prize", "lottery winner"))

	require.NoError(t, err)
	assert.NotNil(t, result.ReplyDraft, "with the prefilter off everything runs the full pipeline")
}

func TestServiceTriage_DuplicateSkipped(t *testing.T) {
	dedup := newStubDedup()
	service := newTestService(t, false, dedup)
	email := testEmail("dup-1", "Question", "how do I reset my password?")

	first, err := service.Triage(context.Background(), email)
	require.NoError(t, err)
	assert.NotNil(t, first.ReplyDraft)

	second, err := service.Triage(context.Background(), email)
	require.NoError(t, err)
	assert.Equal(t, core.StatusCompleted, second.Status)
	assert.Nil(t, second.ReplyDraft, "duplicate within the window is not re-processed")
}

func TestServiceTriage_DedupFailureProcessesAnyway(t *testing.T) {
	dedup := newStubDedup()
	dedup.err = fmt.Errorf("cache offline")
	service := newTestService(t, false, dedup)

	result, err := service.Triage(context.Background(), testEmail("1", "Question", "how?"))

	require.NoError(t, err)
	assert.NotNil(t, result.ReplyDraft, "a broken dedup cache must not drop email")
}

func TestServiceTriage_UrgentPassesPrefilter(t *testing.T) {
	service := newTestService(t, true, nil)

	result, err := service.Triage(context.Background(), testEmail("1", "URGENT: production down", "everything is broken"))

	require.NoError(t, err)
	require.NotNil(t, result.Classification)
	assert.Equal(t, core.PriorityUrgent, result.Classification.Priority)
	assert.NotNil(t, result.ReplyDraft, "urgent emails run the full pipeline")
}
