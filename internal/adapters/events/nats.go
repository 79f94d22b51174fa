package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mikey/llm-email-triage/internal/core"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// NATSPublisher publishes events to a NATS server so consumers in other
// processes (dashboards, relays) can subscribe. The event name is used as
// the subject.
type NATSPublisher struct {
	conn   *nats.Conn
	logger *zap.Logger
}

// NewNATSPublisher connects to NATS and creates a publisher
func NewNATSPublisher(url string, logger *zap.Logger) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSPublisher{
		conn:   conn,
		logger: logger,
	}, nil
}

// Publish sends one event; delivery is fire-and-forget
func (p *NATSPublisher) Publish(ctx context.Context, event core.Event) error {
	payload, err := json.Marshal(eventEnvelope(event))
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}
	if err := p.conn.Publish(event.Name, payload); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event.Name, err)
	}
	return nil
}

// Stop drains and closes the NATS connection
func (p *NATSPublisher) Stop() {
	if err := p.conn.Drain(); err != nil {
		p.logger.Warn("Failed to drain NATS connection", zap.Error(err))
	}
}
