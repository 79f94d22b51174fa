package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/mikey/llm-email-triage/internal/core"
	"go.uber.org/zap"
)

// GoChannelPublisher publishes events on an in-process watermill pub/sub.
// Suitable for single-instance deployments; consumers in the same process
// (dashboards, websocket relays) subscribe to the event name as the topic.
type GoChannelPublisher struct {
	pubSub *gochannel.GoChannel
	logger *zap.Logger
}

// NewGoChannelPublisher creates an in-process event publisher
func NewGoChannelPublisher(logger *zap.Logger) *GoChannelPublisher {
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermill.NewStdLogger(false, false),
	)
	return &GoChannelPublisher{
		pubSub: pubSub,
		logger: logger,
	}
}

// Publish sends one event; the event name is the topic
func (p *GoChannelPublisher) Publish(ctx context.Context, event core.Event) error {
	payload, err := json.Marshal(eventEnvelope(event))
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := p.pubSub.Publish(event.Name, msg); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event.Name, err)
	}
	return nil
}

// Subscribe returns a channel of messages for a topic. Exposed so in-process
// consumers can attach to the same bus.
func (p *GoChannelPublisher) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return p.pubSub.Subscribe(ctx, topic)
}

// Stop closes the pub/sub
func (p *GoChannelPublisher) Stop() {
	if err := p.pubSub.Close(); err != nil {
		p.logger.Warn("Failed to close event bus", zap.Error(err))
	}
}

// eventEnvelope is the serialized form shared by all publishers
func eventEnvelope(event core.Event) map[string]interface{} {
	return map[string]interface{}{
		"event":       event.Name,
		"payload":     event.Payload,
		"occurred_at": event.OccurredAt,
	}
}
