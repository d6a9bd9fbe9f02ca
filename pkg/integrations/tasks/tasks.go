// Package tasks provides the task-management collaborator boundary. No real
// task system is wired yet; the bundled creator logs the request and returns a
// placeholder id so automations keep their skip-with-log behavior at the
// provider edge.
package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Task is a unit of work to be created in the task system.
type Task struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	AssigneeID  string     `json:"assignee_id,omitempty"`
	DueAt       *time.Time `json:"due_at,omitempty"`
}

// Creator creates tasks for an organization.
type Creator interface {
	CreateTask(ctx context.Context, organizationID string, task Task) (string, error)
}

// StubCreator is the placeholder implementation used until a task system is
// integrated.
type StubCreator struct {
	logger *slog.Logger
}

func NewStubCreator(logger *slog.Logger) *StubCreator {
	return &StubCreator{logger: logger.With("module", "tasks")}
}

func (c *StubCreator) CreateTask(ctx context.Context, organizationID string, task Task) (string, error) {
	if strings.TrimSpace(task.Title) == "" {
		return "", fmt.Errorf("task has no title")
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	taskID := "task_" + uuid.New().String()

	c.logger.Info("Task creation is stubbed, no task system integrated",
		"organization_id", organizationID,
		"title", task.Title,
		"task_id", taskID)

	return taskID, nil
}
