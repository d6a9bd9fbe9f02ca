// Package sendemail implements the SEND_EMAIL automation action.
package sendemail

import (
	"github.com/emeraldhq/pulse/pkg/integrations/email"
	"github.com/emeraldhq/pulse/pkg/models"
	"github.com/emeraldhq/pulse/pkg/protocol"
)

// Factory builds SendEmailAction instances bound to the email collaborator.
type Factory struct {
	mailer email.Mailer
}

func NewFactory(mailer email.Mailer) *Factory {
	return &Factory{mailer: mailer}
}

func (*Factory) Kind() models.ActionKind {
	return models.ActionSendEmail
}

func (*Factory) Name() string {
	return "Send email"
}

func (*Factory) Description() string {
	return "Sends a notification email. Recipient, subject and body support templating over the event payload."
}

func (*Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"to": map[string]any{
				"type":        "string",
				"description": "Recipient address. Falls back to the event's email field when empty.",
				"examples":    []string{"{{.data.email}}", "sales@example.com"},
			},
			"subject": map[string]any{
				"type":        "string",
				"description": "Email subject.",
			},
			"body": map[string]any{
				"type":        "string",
				"description": "Email body. Supports templating over the event payload.",
				"examples":    []string{"New lead: {{.data.name}}"},
			},
		},
		"additionalProperties": false,
	}
}

func (f *Factory) Create(config map[string]any) (protocol.Action, error) {
	if config == nil {
		config = map[string]any{}
	}

	return NewSendEmailAction(f.mailer, config), nil
}
