package sendwhatsapp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/emeraldhq/pulse/pkg/integrations/whatsapp"
	"github.com/emeraldhq/pulse/pkg/models"
	"github.com/emeraldhq/pulse/pkg/template"
)

// SendWhatsAppAction sends a text message through the messaging collaborator.
type SendWhatsAppAction struct {
	sender  whatsapp.Sender
	To      string
	Message string
}

func NewSendWhatsAppAction(sender whatsapp.Sender, config map[string]any) *SendWhatsAppAction {
	to, _ := config["to"].(string)
	message, _ := config["message"].(string)

	return &SendWhatsAppAction{
		sender:  sender,
		To:      to,
		Message: message,
	}
}

func (a *SendWhatsAppAction) Execute(ctx context.Context, scope models.ExecutionScope, logger *slog.Logger) (any, error) {
	logger = logger.With("action_kind", models.ActionSendWhatsApp)

	to, err := a.resolveRecipient(scope)
	if err != nil {
		return nil, err
	}

	body, err := template.RenderWithScope(a.messageOrDefault(scope), scope)
	if err != nil {
		return nil, err
	}

	messageID, err := a.sender.SendMessage(ctx, whatsapp.Message{
		To:   to,
		Body: body,
		Kind: whatsapp.MessageKindText,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to send whatsapp message: %w", err)
	}

	logger.Info("WhatsApp message dispatched", "to", to, "message_id", messageID)

	return map[string]any{
		"message_id": messageID,
		"to":         to,
	}, nil
}

func (a *SendWhatsAppAction) resolveRecipient(scope models.ExecutionScope) (string, error) {
	if a.To != "" {
		return template.RenderWithScope(a.To, scope)
	}

	if phone, ok := scope.Event.Data["phone"].(string); ok && phone != "" {
		return phone, nil
	}

	return "", fmt.Errorf("no resolvable whatsapp recipient for automation %s", scope.Automation.ID)
}

func (a *SendWhatsAppAction) messageOrDefault(scope models.ExecutionScope) string {
	if a.Message != "" {
		return a.Message
	}

	return fmt.Sprintf("Automated message from automation: %s", scope.Automation.Name)
}
