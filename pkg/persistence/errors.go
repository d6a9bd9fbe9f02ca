package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrAutomationNotFound indicates no automation exists for the identifier
	// within the organization.
	ErrAutomationNotFound = errors.New("automation not found")

	// ErrInvalidTrigger indicates a value outside the trigger enum was used in
	// a lookup.
	ErrInvalidTrigger = errors.New("invalid trigger")
)

// IsAutomationNotFound reports whether err indicates a missing automation.
func IsAutomationNotFound(err error) bool {
	return errors.Is(err, ErrAutomationNotFound)
}

// AutomationError wraps automation storage errors with operation context.
type AutomationError struct {
	Op             string // Operation being performed (e.g. "GetByID", "Save")
	OrganizationID string
	AutomationID   string
	Err            error
}

func (e *AutomationError) Error() string {
	if e.AutomationID != "" {
		return fmt.Sprintf("%s failed for automation %s (org %s): %v", e.Op, e.AutomationID, e.OrganizationID, e.Err)
	}

	return fmt.Sprintf("%s failed for org %s: %v", e.Op, e.OrganizationID, e.Err)
}

func (e *AutomationError) Unwrap() error {
	return e.Err
}

func (e *AutomationError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewAutomationError creates a new automation error with context.
func NewAutomationError(op, organizationID, automationID string, err error) *AutomationError {
	return &AutomationError{
		Op:             op,
		OrganizationID: organizationID,
		AutomationID:   automationID,
		Err:            err,
	}
}
