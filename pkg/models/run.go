package models

import "time"

// ActionStatus is the outcome of a single action dispatch.
type ActionStatus string

const (
	ActionStatusSucceeded ActionStatus = "succeeded"
	ActionStatusFailed    ActionStatus = "failed"
	ActionStatusSkipped   ActionStatus = "skipped"
)

// ActionResult records the outcome of one action invocation within a run.
type ActionResult struct {
	Kind       ActionKind   `json:"kind"`
	Status     ActionStatus `json:"status"`
	Error      string       `json:"error,omitempty"`
	Output     any          `json:"output,omitempty"`
	DurationMs int64        `json:"duration_ms"`
}

// RunStatus summarizes an automation run across all of its actions.
type RunStatus string

const (
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusPartial   RunStatus = "partial"
	RunStatusFailed    RunStatus = "failed"
)

// AutomationRun is the per-execution record kept for observability. Persisting
// it is best effort and never affects the execution itself.
type AutomationRun struct {
	ID             string         `json:"id"`
	AutomationID   string         `json:"automation_id"`
	OrganizationID string         `json:"organization_id"`
	Trigger        Trigger        `json:"trigger"`
	Status         RunStatus      `json:"status"`
	Results        []ActionResult `json:"results"`
	StartedAt      time.Time      `json:"started_at"`
	FinishedAt     time.Time      `json:"finished_at"`
}

// Resolve derives the run status from the recorded action results. Skipped
// actions do not count against a successful run.
func (r *AutomationRun) Resolve() {
	failed := 0
	succeeded := 0

	for _, result := range r.Results {
		switch result.Status {
		case ActionStatusFailed:
			failed++
		case ActionStatusSucceeded:
			succeeded++
		case ActionStatusSkipped:
		}
	}

	switch {
	case failed == 0:
		r.Status = RunStatusSucceeded
	case succeeded > 0:
		r.Status = RunStatusPartial
	default:
		r.Status = RunStatusFailed
	}
}
