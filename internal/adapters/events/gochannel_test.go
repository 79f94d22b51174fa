package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/llm-email-triage/internal/core"
)

func TestGoChannelPublisher_RoundTrip(t *testing.T) {
	p := NewGoChannelPublisher(zap.NewNop())
	defer p.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	messages, err := p.Subscribe(ctx, core.EventTriageStarted)
	require.NoError(t, err)

	event := core.Event{
		Name:       core.EventTriageStarted,
		Payload:    map[string]interface{}{"session_id": "s1"},
		OccurredAt: time.Now(),
	}
	require.NoError(t, p.Publish(ctx, event))

	select {
	case msg := <-messages:
		var envelope map[string]interface{}
		require.NoError(t, json.Unmarshal(msg.Payload, &envelope))
		assert.Equal(t, core.EventTriageStarted, envelope["event"])
		payload, ok := envelope["payload"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "s1", payload["session_id"])
		msg.Ack()
	case <-ctx.Done():
		t.Fatal("timed out waiting for published event")
	}
}
