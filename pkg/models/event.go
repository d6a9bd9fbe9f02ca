package models

import "time"

// Event is the ephemeral value handed to the dispatcher when a business
// operation fires. It is consumed once and never persisted by the automation
// subsystem.
type Event struct {
	OrganizationID string         `json:"organization_id" validate:"required"`
	Type           Trigger        `json:"type"            validate:"required"`
	Data           map[string]any `json:"data,omitempty"`
	FiredAt        time.Time      `json:"fired_at"`
}
