// Package notifyteam implements the NOTIFY_TEAM automation action. The team
// collaborator is still a logged stub, so the action amounts to skip-with-log
// at the provider edge.
package notifyteam

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/emeraldhq/pulse/pkg/integrations/team"
	"github.com/emeraldhq/pulse/pkg/models"
	"github.com/emeraldhq/pulse/pkg/protocol"
	"github.com/emeraldhq/pulse/pkg/template"
)

type Factory struct {
	notifier team.Notifier
}

func NewFactory(notifier team.Notifier) *Factory {
	return &Factory{notifier: notifier}
}

func (*Factory) Kind() models.ActionKind {
	return models.ActionNotifyTeam
}

func (*Factory) Name() string {
	return "Notify team"
}

func (*Factory) Description() string {
	return "Notifies the organization's members about the event."
}

func (*Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"message": map[string]any{
				"type":        "string",
				"description": "Notification text. Supports templating over the event payload.",
			},
		},
		"additionalProperties": false,
	}
}

func (f *Factory) Create(config map[string]any) (protocol.Action, error) {
	if config == nil {
		config = map[string]any{}
	}

	return NewNotifyTeamAction(f.notifier, config), nil
}

// NotifyTeamAction notifies organization members through the team
// collaborator.
type NotifyTeamAction struct {
	notifier team.Notifier
	Message  string
}

func NewNotifyTeamAction(notifier team.Notifier, config map[string]any) *NotifyTeamAction {
	message, _ := config["message"].(string)

	return &NotifyTeamAction{
		notifier: notifier,
		Message:  message,
	}
}

func (a *NotifyTeamAction) Execute(ctx context.Context, scope models.ExecutionScope, logger *slog.Logger) (any, error) {
	logger = logger.With("action_kind", models.ActionNotifyTeam)

	message, err := template.RenderWithScope(a.messageOrDefault(scope), scope)
	if err != nil {
		return nil, err
	}

	if err := a.notifier.NotifyMembers(ctx, scope.Event.OrganizationID, message); err != nil {
		return nil, fmt.Errorf("failed to notify team: %w", err)
	}

	logger.Info("Team notified")

	return map[string]any{"notified": true}, nil
}

func (a *NotifyTeamAction) messageOrDefault(scope models.ExecutionScope) string {
	if a.Message != "" {
		return a.Message
	}

	return fmt.Sprintf("Automation %q fired for %s", scope.Automation.Name, scope.Event.Type)
}
