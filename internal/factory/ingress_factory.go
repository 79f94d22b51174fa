package factory

import (
	"fmt"

	smtpingress "github.com/mikey/llm-email-triage/internal/adapters/smtp"
	"github.com/mikey/llm-email-triage/internal/config"
	"github.com/mikey/llm-email-triage/internal/ports"
	"github.com/mikey/llm-email-triage/internal/triage"
	"go.uber.org/zap"
)

// IngressFactory creates the inbound email source
type IngressFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	service *triage.Service
}

// NewIngressFactory creates a new ingress factory
func NewIngressFactory(cfg *config.Config, logger *zap.Logger, service *triage.Service) *IngressFactory {
	return &IngressFactory{
		cfg:     cfg,
		logger:  logger,
		service: service,
	}
}

// CreateEmailIngress creates the ingress based on the configuration
func (f *IngressFactory) CreateEmailIngress() (ports.EmailIngress, error) {
	switch f.cfg.GetString("ingress.type") {
	case "smtp":
		return smtpingress.NewIngress(f.service, f.logger, f.cfg.GetString("ingress.listen_address")), nil
	default:
		return nil, fmt.Errorf("unsupported ingress type: %s", f.cfg.GetString("ingress.type"))
	}
}
