// Package email provides the email collaborator boundary. The bundled sender
// simulates a transactional provider (SendGrid/Resend) until the real
// integration lands.
package email

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Result reports a provider-accepted send.
type Result struct {
	MessageID string `json:"message_id"`
}

// Mailer sends notification emails.
type Mailer interface {
	SendNotification(ctx context.Context, to, subject, body string) (Result, error)
}

// Sender simulates a transactional email provider.
type Sender struct {
	logger  *slog.Logger
	from    string
	latency time.Duration
}

type Option func(*Sender)

// WithLatency overrides the simulated provider latency. Tests pass zero.
func WithLatency(d time.Duration) Option {
	return func(s *Sender) {
		s.latency = d
	}
}

// WithFrom sets the sender address stamped on outgoing mail.
func WithFrom(from string) Option {
	return func(s *Sender) {
		s.from = from
	}
}

func NewSender(logger *slog.Logger, opts ...Option) *Sender {
	sender := &Sender{
		logger:  logger.With("module", "email"),
		from:    "notifications@emeraldhq.io",
		latency: 150 * time.Millisecond,
	}

	for _, opt := range opts {
		opt(sender)
	}

	return sender
}

// SendNotification simulates a notification email send and returns a mock
// provider message id.
func (s *Sender) SendNotification(ctx context.Context, to, subject, body string) (Result, error) {
	if strings.TrimSpace(to) == "" {
		return Result{}, fmt.Errorf("notification email has no recipient")
	}

	if strings.TrimSpace(body) == "" {
		return Result{}, fmt.Errorf("notification email has no body")
	}

	if s.latency > 0 {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		case <-time.After(s.latency):
		}
	}

	result := Result{MessageID: "msg_" + uuid.New().String()}

	s.logger.Info("Notification email sent",
		"to", to,
		"from", s.from,
		"subject", subject,
		"message_id", result.MessageID)

	return result, nil
}
