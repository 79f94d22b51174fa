package factory

import (
	"fmt"

	"github.com/mikey/llm-email-triage/internal/adapters/events"
	"github.com/mikey/llm-email-triage/internal/config"
	"github.com/mikey/llm-email-triage/internal/core"
	"go.uber.org/zap"
)

// EventsFactory creates event publishers based on configuration
type EventsFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewEventsFactory creates a new events factory
func NewEventsFactory(cfg *config.Config, logger *zap.Logger) *EventsFactory {
	return &EventsFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateEventPublisher creates an event publisher based on the
// configuration. Type "none" disables event emission.
func (f *EventsFactory) CreateEventPublisher() (core.EventPublisher, error) {
	switch f.cfg.GetString("events.type") {
	case "gochannel":
		return events.NewGoChannelPublisher(f.logger), nil
	case "nats":
		publisher, err := events.NewNATSPublisher(f.cfg.GetString("events.nats_url"), f.logger)
		if err != nil {
			return nil, err
		}
		return publisher, nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported event publisher type: %s", f.cfg.GetString("events.type"))
	}
}
