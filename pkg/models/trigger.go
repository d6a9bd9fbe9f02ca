// Package models defines the core domain models for tenant-scoped automation.
package models

// Trigger is the closed set of business events an automation can react to.
type Trigger string

const (
	TriggerNewLead          Trigger = "NEW_LEAD"
	TriggerNewBooking       Trigger = "NEW_BOOKING"
	TriggerNewMessage       Trigger = "NEW_MESSAGE"
	TriggerLeadStageChanged Trigger = "LEAD_STAGE_CHANGED"
	TriggerBookingConfirmed Trigger = "BOOKING_CONFIRMED"
	TriggerBookingCancelled Trigger = "BOOKING_CANCELLED"
)

// Triggers lists every valid trigger, in a stable order.
func Triggers() []Trigger {
	return []Trigger{
		TriggerNewLead,
		TriggerNewBooking,
		TriggerNewMessage,
		TriggerLeadStageChanged,
		TriggerBookingConfirmed,
		TriggerBookingCancelled,
	}
}

// IsValid reports whether t is a member of the trigger enum.
func (t Trigger) IsValid() bool {
	switch t {
	case TriggerNewLead, TriggerNewBooking, TriggerNewMessage,
		TriggerLeadStageChanged, TriggerBookingConfirmed, TriggerBookingCancelled:
		return true
	default:
		return false
	}
}

func (t Trigger) String() string {
	return string(t)
}
