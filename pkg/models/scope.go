package models

// ExecutionScope carries everything an action handler may read while running:
// the originating event, the owning automation (for labeling and logging) and
// the run it belongs to.
type ExecutionScope struct {
	RunID      string      `json:"run_id"`
	Automation *Automation `json:"automation"`
	Event      Event       `json:"event"`
}
