package models

// ActionKind identifies the handler an action descriptor dispatches to.
type ActionKind string

const (
	ActionSendEmail    ActionKind = "SEND_EMAIL"
	ActionSendWhatsApp ActionKind = "SEND_WHATSAPP"
	ActionCreateTask   ActionKind = "CREATE_TASK"
	ActionNotifyTeam   ActionKind = "NOTIFY_TEAM"
)

// ActionItem is a single step in an automation's ordered action list. The
// configuration payload is opaque here and interpreted only by the matching
// action handler.
type ActionItem struct {
	Kind          ActionKind     `json:"kind"`
	Configuration map[string]any `json:"configuration,omitempty"`
}
