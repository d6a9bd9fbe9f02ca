// Package sendwhatsapp implements the SEND_WHATSAPP automation action.
package sendwhatsapp

import (
	"github.com/emeraldhq/pulse/pkg/integrations/whatsapp"
	"github.com/emeraldhq/pulse/pkg/models"
	"github.com/emeraldhq/pulse/pkg/protocol"
)

// Factory builds SendWhatsAppAction instances bound to the messaging
// collaborator.
type Factory struct {
	sender whatsapp.Sender
}

func NewFactory(sender whatsapp.Sender) *Factory {
	return &Factory{sender: sender}
}

func (*Factory) Kind() models.ActionKind {
	return models.ActionSendWhatsApp
}

func (*Factory) Name() string {
	return "Send WhatsApp message"
}

func (*Factory) Description() string {
	return "Sends a WhatsApp text message. Recipient and message support templating over the event payload."
}

func (*Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"to": map[string]any{
				"type":        "string",
				"description": "Recipient phone in E.164 form. Falls back to the event's phone field when empty.",
				"examples":    []string{"{{.data.phone}}", "+971501234567"},
			},
			"message": map[string]any{
				"type":        "string",
				"description": "Message text. Supports templating over the event payload.",
				"examples":    []string{"Hi {{.data.name}}, thanks for reaching out!"},
			},
		},
		"additionalProperties": false,
	}
}

func (f *Factory) Create(config map[string]any) (protocol.Action, error) {
	if config == nil {
		config = map[string]any{}
	}

	return NewSendWhatsAppAction(f.sender, config), nil
}
