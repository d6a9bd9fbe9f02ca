// Package events defines the event types published on the bus for automation
// lifecycle notifications and cross-service event firing.
package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/emeraldhq/pulse/pkg/models"
)

type EventType string

// Topic is the Kafka topic all pulse events are published on.
const Topic = "pulse.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// EventFiredEvent carries a business event to be dispatched by a worker.
	EventFiredEvent EventType = "event.fired"

	// Automation lifecycle events.
	AutomationTriggeredEvent EventType = "automation.triggered"
	AutomationFinishedEvent  EventType = "automation.finished"
	AutomationFailedEvent    EventType = "automation.failed"
	ActionFailedEvent        EventType = "automation.action.failed"
)

type BaseEvent struct {
	ID             string         `json:"id"`
	Type           EventType      `json:"type"`
	Timestamp      time.Time      `json:"timestamp"`
	OrganizationID string         `json:"organization_id"`
	WorkerID       string         `json:"worker_id,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

func NewBaseEvent(eventType EventType, organizationID string) BaseEvent {
	return BaseEvent{
		ID:             uuid.New().String(),
		Type:           eventType,
		Timestamp:      time.Now().UTC(),
		OrganizationID: organizationID,
	}
}

// EventFired is a business event in transit between the service that observed
// it and the worker that dispatches it.
type EventFired struct {
	BaseEvent

	Trigger models.Trigger `json:"trigger"`
	Data    map[string]any `json:"data,omitempty"`
}

func (e EventFired) GetType() EventType {
	return EventFiredEvent
}

// NewEventFired wraps a business event for the bus.
func NewEventFired(event models.Event) EventFired {
	return EventFired{
		BaseEvent: NewBaseEvent(EventFiredEvent, event.OrganizationID),
		Trigger:   event.Type,
		Data:      event.Data,
	}
}

// Event unwraps the bus envelope back into a business event.
func (e EventFired) Event() models.Event {
	return models.Event{
		OrganizationID: e.OrganizationID,
		Type:           e.Trigger,
		Data:           e.Data,
		FiredAt:        e.Timestamp,
	}
}

type AutomationTriggered struct {
	BaseEvent

	AutomationID string         `json:"automation_id"`
	RunID        string         `json:"run_id"`
	Trigger      models.Trigger `json:"trigger"`
}

func (e AutomationTriggered) GetType() EventType {
	return AutomationTriggeredEvent
}

type AutomationFinished struct {
	BaseEvent

	AutomationID string           `json:"automation_id"`
	RunID        string           `json:"run_id"`
	Status       models.RunStatus `json:"status"`
	Duration     time.Duration    `json:"duration"`
}

func (e AutomationFinished) GetType() EventType {
	return AutomationFinishedEvent
}

type AutomationFailed struct {
	BaseEvent

	AutomationID string        `json:"automation_id"`
	RunID        string        `json:"run_id"`
	Error        string        `json:"error"`
	Duration     time.Duration `json:"duration"`
}

func (e AutomationFailed) GetType() EventType {
	return AutomationFailedEvent
}

type ActionFailed struct {
	BaseEvent

	AutomationID string            `json:"automation_id"`
	RunID        string            `json:"run_id"`
	ActionKind   models.ActionKind `json:"action_kind"`
	Error        string            `json:"error"`
}

func (e ActionFailed) GetType() EventType {
	return ActionFailedEvent
}
