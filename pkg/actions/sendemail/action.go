package sendemail

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/emeraldhq/pulse/pkg/integrations/email"
	"github.com/emeraldhq/pulse/pkg/models"
	"github.com/emeraldhq/pulse/pkg/template"
)

// SendEmailAction sends a notification email through the email collaborator.
type SendEmailAction struct {
	mailer  email.Mailer
	To      string
	Subject string
	Body    string
}

func NewSendEmailAction(mailer email.Mailer, config map[string]any) *SendEmailAction {
	to, _ := config["to"].(string)
	subject, _ := config["subject"].(string)
	body, _ := config["body"].(string)

	return &SendEmailAction{
		mailer:  mailer,
		To:      to,
		Subject: subject,
		Body:    body,
	}
}

func (a *SendEmailAction) Execute(ctx context.Context, scope models.ExecutionScope, logger *slog.Logger) (any, error) {
	logger = logger.With("action_kind", models.ActionSendEmail)

	to, err := a.resolveRecipient(scope)
	if err != nil {
		return nil, err
	}

	subject, err := template.RenderWithScope(a.subjectOrDefault(), scope)
	if err != nil {
		return nil, err
	}

	body, err := template.RenderWithScope(a.bodyOrDefault(scope), scope)
	if err != nil {
		return nil, err
	}

	result, err := a.mailer.SendNotification(ctx, to, subject, body)
	if err != nil {
		return nil, fmt.Errorf("failed to send notification email: %w", err)
	}

	logger.Info("Notification email dispatched", "to", to, "message_id", result.MessageID)

	return map[string]any{
		"message_id": result.MessageID,
		"to":         to,
	}, nil
}

func (a *SendEmailAction) resolveRecipient(scope models.ExecutionScope) (string, error) {
	if a.To != "" {
		return template.RenderWithScope(a.To, scope)
	}

	if addr, ok := scope.Event.Data["email"].(string); ok && addr != "" {
		return addr, nil
	}

	return "", fmt.Errorf("no resolvable email recipient for automation %s", scope.Automation.ID)
}

func (a *SendEmailAction) subjectOrDefault() string {
	if a.Subject != "" {
		return a.Subject
	}

	return "Notification from Emerald AI"
}

func (a *SendEmailAction) bodyOrDefault(scope models.ExecutionScope) string {
	if a.Body != "" {
		return a.Body
	}

	return fmt.Sprintf("Event: %s\n\nAutomation: %s", scope.Event.Type, scope.Automation.Name)
}
