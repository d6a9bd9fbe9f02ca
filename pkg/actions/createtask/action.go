// Package createtask implements the CREATE_TASK automation action. The task
// collaborator is still a logged stub, so the action amounts to skip-with-log
// at the provider edge.
package createtask

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/emeraldhq/pulse/pkg/integrations/tasks"
	"github.com/emeraldhq/pulse/pkg/models"
	"github.com/emeraldhq/pulse/pkg/protocol"
	"github.com/emeraldhq/pulse/pkg/template"
)

type Factory struct {
	creator tasks.Creator
}

func NewFactory(creator tasks.Creator) *Factory {
	return &Factory{creator: creator}
}

func (*Factory) Kind() models.ActionKind {
	return models.ActionCreateTask
}

func (*Factory) Name() string {
	return "Create task"
}

func (*Factory) Description() string {
	return "Creates a follow-up task for the organization."
}

func (*Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type":        "string",
				"description": "Task title. Supports templating over the event payload.",
			},
			"description": map[string]any{
				"type":        "string",
				"description": "Task description.",
			},
			"assignee_id": map[string]any{
				"type":        "string",
				"description": "Member the task is assigned to.",
			},
		},
		"additionalProperties": false,
	}
}

func (f *Factory) Create(config map[string]any) (protocol.Action, error) {
	if config == nil {
		config = map[string]any{}
	}

	return NewCreateTaskAction(f.creator, config), nil
}

// CreateTaskAction creates a task record through the task collaborator.
type CreateTaskAction struct {
	creator     tasks.Creator
	Title       string
	Description string
	AssigneeID  string
}

func NewCreateTaskAction(creator tasks.Creator, config map[string]any) *CreateTaskAction {
	title, _ := config["title"].(string)
	description, _ := config["description"].(string)
	assigneeID, _ := config["assignee_id"].(string)

	return &CreateTaskAction{
		creator:     creator,
		Title:       title,
		Description: description,
		AssigneeID:  assigneeID,
	}
}

func (a *CreateTaskAction) Execute(ctx context.Context, scope models.ExecutionScope, logger *slog.Logger) (any, error) {
	logger = logger.With("action_kind", models.ActionCreateTask)

	title, err := template.RenderWithScope(a.titleOrDefault(scope), scope)
	if err != nil {
		return nil, err
	}

	description, err := template.RenderWithScope(a.Description, scope)
	if err != nil {
		return nil, err
	}

	taskID, err := a.creator.CreateTask(ctx, scope.Event.OrganizationID, tasks.Task{
		Title:       title,
		Description: description,
		AssigneeID:  a.AssigneeID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	logger.Info("Task created", "task_id", taskID)

	return map[string]any{"task_id": taskID}, nil
}

func (a *CreateTaskAction) titleOrDefault(scope models.ExecutionScope) string {
	if a.Title != "" {
		return a.Title
	}

	return fmt.Sprintf("Follow up: %s", scope.Event.Type)
}
