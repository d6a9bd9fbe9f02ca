package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/emeraldhq/pulse/pkg/models"
	"github.com/emeraldhq/pulse/pkg/persistence"
)

// AutomationRepository handles automation-related database operations.
type AutomationRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewAutomationRepository(db *sql.DB, logger *slog.Logger) *AutomationRepository {
	return &AutomationRepository{db: db, logger: logger}
}

const automationColumns = `
	id
  , organization_id
  , name
  , trigger
  , actions
  , is_active
  , created_at
  , updated_at
  , deleted_at
`

// FindActive returns the organization's active automations for the trigger,
// in creation order.
func (r *AutomationRepository) FindActive(ctx context.Context, organizationID string, trigger models.Trigger) ([]*models.Automation, error) {
	if !trigger.IsValid() {
		return nil, persistence.NewAutomationError("FindActive", organizationID, "", persistence.ErrInvalidTrigger)
	}

	query := `
		SELECT ` + automationColumns + `
		FROM automations
		WHERE organization_id = $1
		  AND trigger = $2
		  AND is_active
		  AND deleted_at IS NULL
		ORDER BY created_at ASC
	`

	return r.queryAutomations(ctx, "FindActive", organizationID, query, organizationID, string(trigger))
}

// GetAll returns the organization's non-deleted automations in creation order.
func (r *AutomationRepository) GetAll(ctx context.Context, organizationID string) ([]*models.Automation, error) {
	query := `
		SELECT ` + automationColumns + `
		FROM automations
		WHERE organization_id = $1 AND deleted_at IS NULL
		ORDER BY created_at ASC
	`

	return r.queryAutomations(ctx, "GetAll", organizationID, query, organizationID)
}

func (r *AutomationRepository) GetByID(ctx context.Context, organizationID, id string) (*models.Automation, error) {
	query := `
		SELECT ` + automationColumns + `
		FROM automations
		WHERE id = $1 AND organization_id = $2 AND deleted_at IS NULL
	`

	row := r.db.QueryRowContext(ctx, query, id, organizationID)

	automation, err := scanAutomation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewAutomationError("GetByID", organizationID, id, persistence.ErrAutomationNotFound)
		}

		return nil, persistence.NewAutomationError("GetByID", organizationID, id, err)
	}

	return automation, nil
}

func (r *AutomationRepository) Save(ctx context.Context, automation *models.Automation) error {
	actions, err := json.Marshal(automation.Actions)
	if err != nil {
		return persistence.NewAutomationError("Save", automation.OrganizationID, automation.ID,
			fmt.Errorf("failed to encode actions: %w", err))
	}

	query := `
		INSERT INTO automations (id, organization_id, name, trigger, actions, is_active, created_at, updated_at, deleted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			trigger = EXCLUDED.trigger,
			actions = EXCLUDED.actions,
			is_active = EXCLUDED.is_active,
			updated_at = EXCLUDED.updated_at,
			deleted_at = EXCLUDED.deleted_at
	`

	_, err = r.db.ExecContext(ctx, query,
		automation.ID,
		automation.OrganizationID,
		automation.Name,
		string(automation.Trigger),
		actions,
		automation.IsActive,
		automation.CreatedAt,
		automation.UpdatedAt,
		automation.DeletedAt,
	)
	if err != nil {
		return persistence.NewAutomationError("Save", automation.OrganizationID, automation.ID, err)
	}

	return nil
}

// Delete soft deletes an automation by setting deleted_at.
func (r *AutomationRepository) Delete(ctx context.Context, organizationID, id string) error {
	query := `
		UPDATE automations
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND organization_id = $2 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, id, organizationID)
	if err != nil {
		return persistence.NewAutomationError("Delete", organizationID, id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewAutomationError("Delete", organizationID, id, err)
	}

	if affected == 0 {
		return persistence.NewAutomationError("Delete", organizationID, id, persistence.ErrAutomationNotFound)
	}

	return nil
}

func (r *AutomationRepository) Count(ctx context.Context, organizationID string) (int64, error) {
	var count int64

	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM automations WHERE organization_id = $1 AND deleted_at IS NULL",
		organizationID,
	).Scan(&count)
	if err != nil {
		return 0, persistence.NewAutomationError("Count", organizationID, "", err)
	}

	return count, nil
}

func (r *AutomationRepository) queryAutomations(ctx context.Context, op, organizationID, query string, args ...any) ([]*models.Automation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, persistence.NewAutomationError(op, organizationID, "", err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	automations := make([]*models.Automation, 0)

	for rows.Next() {
		automation, err := scanAutomation(rows)
		if err != nil {
			return nil, persistence.NewAutomationError(op, organizationID, "", err)
		}

		automations = append(automations, automation)
	}

	if err := rows.Err(); err != nil {
		return nil, persistence.NewAutomationError(op, organizationID, "", err)
	}

	return automations, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAutomation(row rowScanner) (*models.Automation, error) {
	var (
		automation models.Automation
		trigger    string
		actions    []byte
	)

	err := row.Scan(
		&automation.ID,
		&automation.OrganizationID,
		&automation.Name,
		&trigger,
		&actions,
		&automation.IsActive,
		&automation.CreatedAt,
		&automation.UpdatedAt,
		&automation.DeletedAt,
	)
	if err != nil {
		return nil, err
	}

	automation.Trigger = models.Trigger(trigger)

	if err := json.Unmarshal(actions, &automation.Actions); err != nil {
		return nil, fmt.Errorf("failed to decode actions: %w", err)
	}

	return &automation, nil
}
