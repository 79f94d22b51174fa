package smtp

import (
	"context"
	"fmt"
	"io"
	"net/mail"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/google/uuid"
	"github.com/mikey/llm-email-triage/internal/core"
	"github.com/mikey/llm-email-triage/internal/triage"
	"go.uber.org/zap"
)

// Ingress receives inbound email over SMTP, in the style of a postfix
// after-queue content filter, and submits each message for triage.
type Ingress struct {
	service    *triage.Service
	logger     *zap.Logger
	listenAddr string
	server     *smtp.Server
}

// NewIngress creates a new SMTP ingress
func NewIngress(service *triage.Service, logger *zap.Logger, listenAddr string) *Ingress {
	return &Ingress{
		service:    service,
		logger:     logger,
		listenAddr: listenAddr,
	}
}

// Start starts the SMTP server
func (i *Ingress) Start() error {
	i.server = smtp.NewServer(&smtpBackend{ingress: i})

	i.server.Addr = i.listenAddr
	i.server.Domain = "localhost"
	i.server.ReadTimeout = 30 * time.Second
	i.server.WriteTimeout = 30 * time.Second
	i.server.MaxMessageBytes = 30 * 1024 * 1024 // 30MB
	i.server.MaxRecipients = 50
	i.server.AllowInsecureAuth = true

	i.logger.Info("SMTP ingress starting", zap.String("address", i.listenAddr))

	go func() {
		if err := i.server.ListenAndServe(); err != nil {
			if err != smtp.ErrServerClosed {
				i.logger.Error("SMTP server error", zap.Error(err))
			}
		}
	}()

	return nil
}

// Stop stops the SMTP server
func (i *Ingress) Stop() error {
	if i.server != nil {
		return i.server.Close()
	}
	return nil
}

// ProcessEmail runs triage for a single email. Used by tests and direct calls.
func (i *Ingress) ProcessEmail(ctx context.Context, email *core.EmailData) (*core.TriageResult, error) {
	return i.service.Triage(ctx, email)
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	ingress *Ingress
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(c *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{
		ingress:    b.ingress,
		recipients: make([]string, 0),
	}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	ingress    *Ingress
	sender     string
	recipients []string
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = make([]string, 0)
}

// AuthPlain handles PLAIN authentication (not needed for the ingress)
func (s *smtpSession) AuthPlain(_ []byte) error {
	return smtp.ErrAuthUnsupported
}

// Mail sets the sender address
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

// Rcpt adds a recipient
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data receives the message and submits it for triage
func (s *smtpSession) Data(r io.Reader) error {
	email, err := ParseEmail(r, s.sender, s.recipients)
	if err != nil {
		s.ingress.logger.Error("Failed to parse inbound email", zap.Error(err))
		return err
	}

	result, err := s.ingress.service.Triage(context.Background(), email)
	if err != nil {
		s.ingress.logger.Error("Triage failed for inbound email",
			zap.String("email_id", email.ID),
			zap.Error(err))
		return err
	}

	s.ingress.logger.Info("Inbound email triaged",
		zap.String("email_id", email.ID),
		zap.String("session_id", result.SessionID),
		zap.String("status", string(result.Status)))
	return nil
}

// Logout is called when the session ends
func (s *smtpSession) Logout() error {
	return nil
}

// ParseEmail builds an EmailData from a raw RFC 5322 message. The Message-ID
// header is used as the dedup id when present; otherwise one is generated.
func ParseEmail(r io.Reader, sender string, recipients []string) (*core.EmailData, error) {
	msg, err := mail.ReadMessage(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse email message: %w", err)
	}

	body, err := io.ReadAll(msg.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read email body: %w", err)
	}

	id := msg.Header.Get("Message-ID")
	if id == "" {
		id = uuid.NewString()
	}

	from := msg.Header.Get("From")
	if from == "" {
		from = sender
	}

	timestamp := time.Now()
	if date, err := msg.Header.Date(); err == nil {
		timestamp = date
	}

	return &core.EmailData{
		ID:   id,
		Body: string(body),
		Metadata: core.EmailMetadata{
			Subject:   msg.Header.Get("Subject"),
			From:      from,
			To:        recipients,
			Timestamp: timestamp,
			Headers:   msg.Header,
			UserID:    from,
		},
	}, nil
}
