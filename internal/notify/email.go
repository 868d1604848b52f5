package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/medikah/telehealth-intake/pkg/logging"
)

// Message is one outbound email.
type Message struct {
	To        string
	ToName    string
	Subject   string
	PlainText string
	HTML      string
}

// EmailSender delivers a single message.
type EmailSender interface {
	Send(ctx context.Context, msg Message) error
}

// SendGridSender delivers through the SendGrid v3 API.
type SendGridSender struct {
	apiKey    string
	fromEmail string
	fromName  string
	logger    *logging.Logger
}

func NewSendGridSender(apiKey, fromEmail, fromName string, logger *logging.Logger) (*SendGridSender, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("notify: sendgrid api key is required")
	}
	if fromEmail == "" {
		return nil, fmt.Errorf("notify: from email is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SendGridSender{apiKey: apiKey, fromEmail: fromEmail, fromName: fromName, logger: logger}, nil
}

func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(msg.ToName, msg.To)
	html := msg.HTML
	if html == "" {
		html = msg.PlainText
	}
	email := mail.NewSingleEmail(from, msg.Subject, to, msg.PlainText, html)

	client := sendgrid.NewSendClient(s.apiKey)
	resp, err := client.SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("notify: sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("notify: sendgrid send: status %d: %s", resp.StatusCode, resp.Body)
	}

	s.logger.Info("notify: email sent", "to", msg.To, "subject", msg.Subject)
	return nil
}

// StubEmailSender records messages instead of sending them. Used when no
// SendGrid key is configured and in tests.
type StubEmailSender struct {
	mu     sync.Mutex
	sent   []Message
	logger *logging.Logger
}

func NewStubEmailSender(logger *logging.Logger) *StubEmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &StubEmailSender{logger: logger}
}

func (s *StubEmailSender) Send(_ context.Context, msg Message) error {
	s.mu.Lock()
	s.sent = append(s.sent, msg)
	s.mu.Unlock()
	s.logger.Info("notify: stub email", "to", msg.To, "subject", msg.Subject)
	return nil
}

// Sent returns a copy of everything delivered so far.
func (s *StubEmailSender) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.sent...)
}
