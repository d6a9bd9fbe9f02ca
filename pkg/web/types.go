// Package web provides the HTTP surface of pulse: automation management,
// event firing and the WhatsApp inbound webhook.
package web

import (
	"github.com/emeraldhq/pulse/pkg/models"
)

// PlanHeader carries the organization's subscription plan, set by the
// upstream auth gateway. Requests without it are treated as starter tier.
const PlanHeader = "X-Subscription-Plan"

// ActionItemRequest is one action descriptor in an automation payload.
type ActionItemRequest struct {
	Kind          string         `json:"kind"          validate:"required"`
	Configuration map[string]any `json:"configuration"`
}

// CreateAutomationRequest is the request body for creating an automation.
type CreateAutomationRequest struct {
	Name    string              `json:"name"    validate:"required,min=3"`
	Trigger string              `json:"trigger" validate:"required"`
	Actions []ActionItemRequest `json:"actions" validate:"required,min=1,dive"`
}

// UpdateAutomationRequest replaces an automation's definition.
type UpdateAutomationRequest struct {
	Name    string              `json:"name"    validate:"required,min=3"`
	Trigger string              `json:"trigger" validate:"required"`
	Actions []ActionItemRequest `json:"actions" validate:"required,min=1,dive"`
}

// SetActiveRequest toggles an automation on or off.
type SetActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// FireEventRequest is the request body for firing a business event.
type FireEventRequest struct {
	Trigger string         `json:"trigger" validate:"required"`
	Data    map[string]any `json:"data"`
}

// ActionKindResponse describes one registered action kind.
type ActionKindResponse struct {
	Kind        string         `json:"kind"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Schema      map[string]any `json:"schema,omitempty"`
}

func toActionItems(items []ActionItemRequest) []models.ActionItem {
	actions := make([]models.ActionItem, 0, len(items))
	for _, item := range items {
		actions = append(actions, models.ActionItem{
			Kind:          models.ActionKind(item.Kind),
			Configuration: item.Configuration,
		})
	}

	return actions
}
