package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikey/llm-email-triage/internal/core"
)

func TestMemoryStore_SaveAndGet(t *testing.T) {
	store := NewMemoryStore(time.Hour, time.Hour)
	ctx := context.Background()

	result := &core.TriageResult{SessionID: "s1", EmailID: "e1", Status: core.StatusCompleted}
	require.NoError(t, store.Save(ctx, result))

	got, found, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "e1", got.EmailID)
}

func TestMemoryStore_Missing(t *testing.T) {
	store := NewMemoryStore(time.Hour, time.Hour)

	_, found, err := store.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore(20*time.Millisecond, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &core.TriageResult{SessionID: "s1"}))
	time.Sleep(50 * time.Millisecond)

	_, found, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, found)
}
