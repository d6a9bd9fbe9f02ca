// Package persistence provides the storage abstraction for automations and
// their execution records.
package persistence

import (
	"context"
	"time"

	"github.com/emeraldhq/pulse/pkg/models"
)

// Persistence is the storage boundary the rest of the system depends on.
type Persistence interface {
	AutomationRepository() AutomationRepository
	RunRepository() RunRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// AutomationRepository stores tenant-scoped automation definitions.
type AutomationRepository interface {
	// FindActive returns the active automations for an exact organization and
	// trigger match, in creation order.
	FindActive(ctx context.Context, organizationID string, trigger models.Trigger) ([]*models.Automation, error)

	GetAll(ctx context.Context, organizationID string) ([]*models.Automation, error)
	GetByID(ctx context.Context, organizationID, id string) (*models.Automation, error)
	Save(ctx context.Context, automation *models.Automation) error
	Delete(ctx context.Context, organizationID, id string) error

	// Count returns the number of non-deleted automations the organization
	// owns, used for plan limit checks.
	Count(ctx context.Context, organizationID string) (int64, error)
}

// RunRepository stores per-execution records for observability.
type RunRepository interface {
	SaveRun(ctx context.Context, run *models.AutomationRun) error
	ListRuns(ctx context.Context, organizationID string, limit int) ([]*models.AutomationRun, error)

	// PruneRunsBefore removes runs finished before the cutoff and returns the
	// number removed.
	PruneRunsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
