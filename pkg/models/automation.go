package models

import "time"

// Automation binds one trigger to an ordered list of actions, scoped to
// exactly one organization. The dispatcher treats automations as read-only;
// they are created and edited through the management API.
type Automation struct {
	ID             string       `json:"id"`
	OrganizationID string       `json:"organization_id" validate:"required"`
	Name           string       `json:"name"            validate:"required,min=3"`
	Trigger        Trigger      `json:"trigger"         validate:"required"`
	Actions        []ActionItem `json:"actions"`
	IsActive       bool         `json:"is_active"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
	DeletedAt      *time.Time   `json:"deleted_at,omitempty"`
}
