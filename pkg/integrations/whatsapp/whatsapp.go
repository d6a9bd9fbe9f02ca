// Package whatsapp provides the messaging collaborator boundary. The bundled
// client is a stand-in for the Meta WhatsApp Cloud API: it simulates the
// provider round trip and returns mock message ids until the real integration
// lands.
package whatsapp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MessageKind is the WhatsApp message type being sent.
type MessageKind string

const (
	MessageKindText     MessageKind = "text"
	MessageKindTemplate MessageKind = "template"
)

// Message is an outbound WhatsApp message.
type Message struct {
	To             string      `json:"to"`
	Body           string      `json:"body"`
	Kind           MessageKind `json:"kind,omitempty"`
	TemplateName   string      `json:"template_name,omitempty"`
	TemplateParams []string    `json:"template_params,omitempty"`
}

// Sender sends WhatsApp messages on behalf of an organization.
type Sender interface {
	SendMessage(ctx context.Context, msg Message) (string, error)
}

// Client simulates the WhatsApp Cloud API. Real calls would POST to
// graph.facebook.com/<version>/<phone-number-id>/messages with a bearer token.
type Client struct {
	logger  *slog.Logger
	latency time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithLatency overrides the simulated provider latency. Tests pass zero.
func WithLatency(d time.Duration) Option {
	return func(c *Client) {
		c.latency = d
	}
}

func NewClient(logger *slog.Logger, opts ...Option) *Client {
	client := &Client{
		logger:  logger.With("module", "whatsapp"),
		latency: 150 * time.Millisecond,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// SendMessage simulates sending a message and returns a mock provider id.
func (c *Client) SendMessage(ctx context.Context, msg Message) (string, error) {
	if strings.TrimSpace(msg.To) == "" {
		return "", fmt.Errorf("whatsapp message has no recipient")
	}

	if msg.Kind == "" {
		msg.Kind = MessageKindText
	}

	if msg.Kind == MessageKindText && strings.TrimSpace(msg.Body) == "" {
		return "", fmt.Errorf("whatsapp text message has no body")
	}

	if err := c.simulateRoundTrip(ctx); err != nil {
		return "", err
	}

	messageID := "wamid." + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))

	c.logger.Info("WhatsApp message sent",
		"to", msg.To,
		"kind", msg.Kind,
		"message_id", messageID)

	return messageID, nil
}

func (c *Client) simulateRoundTrip(ctx context.Context) error {
	if c.latency <= 0 {
		return ctx.Err()
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.latency):
		return nil
	}
}
