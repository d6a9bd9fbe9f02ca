package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"

	"github.com/emeraldhq/pulse/pkg/models"
	"github.com/emeraldhq/pulse/pkg/persistence"
)

const dirPerm = 0o755

// AutomationRepository stores one JSON document per automation under
// <root>/automations/<organization>/<id>.json.
type AutomationRepository struct {
	root string
}

func NewAutomationRepository(root string) *AutomationRepository {
	return &AutomationRepository{root: root}
}

func (r *AutomationRepository) orgDir(organizationID string) string {
	return path.Join(r.root, "automations", organizationID)
}

func (r *AutomationRepository) filePath(organizationID, id string) string {
	return path.Join(r.orgDir(organizationID), id+".json")
}

// FindActive returns the organization's active automations for the trigger,
// in creation order.
func (r *AutomationRepository) FindActive(ctx context.Context, organizationID string, trigger models.Trigger) ([]*models.Automation, error) {
	if !trigger.IsValid() {
		return nil, persistence.NewAutomationError("FindActive", organizationID, "", persistence.ErrInvalidTrigger)
	}

	all, err := r.GetAll(ctx, organizationID)
	if err != nil {
		return nil, err
	}

	matched := make([]*models.Automation, 0)

	for _, automation := range all {
		if automation.Trigger == trigger && automation.IsActive {
			matched = append(matched, automation)
		}
	}

	return matched, nil
}

// GetAll returns the organization's non-deleted automations in creation order.
func (r *AutomationRepository) GetAll(ctx context.Context, organizationID string) ([]*models.Automation, error) {
	dir := r.orgDir(organizationID)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return make([]*models.Automation, 0), nil
	}

	jsonFiles, err := fs.Glob(os.DirFS(dir), "*.json")
	if err != nil {
		return nil, persistence.NewAutomationError("GetAll", organizationID, "", err)
	}

	automations := make([]*models.Automation, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		id := file[:len(file)-5] // strip .json

		automation, err := r.GetByID(ctx, organizationID, id)
		if err != nil {
			if errors.Is(err, persistence.ErrAutomationNotFound) {
				continue
			}

			return nil, err
		}

		automations = append(automations, automation)
	}

	sort.Slice(automations, func(i, j int) bool {
		return automations[i].CreatedAt.Before(automations[j].CreatedAt)
	})

	return automations, nil
}

// GetByID loads a single automation. Soft-deleted automations are reported as
// not found.
func (r *AutomationRepository) GetByID(_ context.Context, organizationID, id string) (*models.Automation, error) {
	data, err := os.ReadFile(r.filePath(organizationID, id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.NewAutomationError("GetByID", organizationID, id, persistence.ErrAutomationNotFound)
		}

		return nil, persistence.NewAutomationError("GetByID", organizationID, id, err)
	}

	var automation models.Automation
	if err := json.Unmarshal(data, &automation); err != nil {
		return nil, persistence.NewAutomationError("GetByID", organizationID, id,
			fmt.Errorf("failed to decode automation: %w", err))
	}

	if automation.DeletedAt != nil {
		return nil, persistence.NewAutomationError("GetByID", organizationID, id, persistence.ErrAutomationNotFound)
	}

	return &automation, nil
}

func (r *AutomationRepository) Save(_ context.Context, automation *models.Automation) error {
	dir := r.orgDir(automation.OrganizationID)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return persistence.NewAutomationError("Save", automation.OrganizationID, automation.ID, err)
	}

	data, err := json.MarshalIndent(automation, "", "  ")
	if err != nil {
		return persistence.NewAutomationError("Save", automation.OrganizationID, automation.ID, err)
	}

	if err := os.WriteFile(r.filePath(automation.OrganizationID, automation.ID), data, 0o600); err != nil {
		return persistence.NewAutomationError("Save", automation.OrganizationID, automation.ID, err)
	}

	return nil
}

func (r *AutomationRepository) Delete(_ context.Context, organizationID, id string) error {
	err := os.Remove(r.filePath(organizationID, id))
	if err != nil {
		if os.IsNotExist(err) {
			return persistence.NewAutomationError("Delete", organizationID, id, persistence.ErrAutomationNotFound)
		}

		return persistence.NewAutomationError("Delete", organizationID, id, err)
	}

	return nil
}

func (r *AutomationRepository) Count(ctx context.Context, organizationID string) (int64, error) {
	automations, err := r.GetAll(ctx, organizationID)
	if err != nil {
		return 0, err
	}

	return int64(len(automations)), nil
}
