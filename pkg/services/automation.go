// Package services holds the application-facing operations over automations:
// validated CRUD with plan gating, and run history lookups.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/emeraldhq/pulse/pkg/gating"
	"github.com/emeraldhq/pulse/pkg/models"
	"github.com/emeraldhq/pulse/pkg/persistence"
	"github.com/emeraldhq/pulse/pkg/registry"
)

// ErrValidation wraps structural validation failures of an automation payload.
var ErrValidation = errors.New("automation validation failed")

// AutomationService owns the lifecycle of automation definitions for an
// organization. All writes pass plan gating and structural validation before
// touching storage.
type AutomationService struct {
	logger      *slog.Logger
	automations persistence.AutomationRepository
	runs        persistence.RunRepository
	gate        *gating.Gate
	registry    *registry.Registry
	validate    *validator.Validate
}

func NewAutomationService(
	logger *slog.Logger,
	automations persistence.AutomationRepository,
	runs persistence.RunRepository,
	gate *gating.Gate,
	reg *registry.Registry,
) *AutomationService {
	return &AutomationService{
		logger:      logger.With("module", "automation_service"),
		automations: automations,
		runs:        runs,
		gate:        gate,
		registry:    reg,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Create validates the automation, checks the organization's plan allows one
// more, and persists it. New automations default to active.
func (s *AutomationService) Create(ctx context.Context, plan models.SubscriptionPlan, automation *models.Automation) (*models.Automation, error) {
	if err := s.validateAutomation(automation); err != nil {
		return nil, err
	}

	if err := s.gate.CanCreateAutomation(ctx, automation.OrganizationID, plan); err != nil {
		return nil, err
	}

	if automation.ID == "" {
		automation.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	automation.CreatedAt = now
	automation.UpdatedAt = now
	automation.DeletedAt = nil
	automation.IsActive = true

	if err := s.automations.Save(ctx, automation); err != nil {
		return nil, err
	}

	s.gate.InvalidateCount(ctx, automation.OrganizationID)

	s.logger.Info("Created automation",
		"organization_id", automation.OrganizationID,
		"automation_id", automation.ID,
		"trigger", automation.Trigger)

	return automation, nil
}

// Update replaces an existing automation's definition. Creation time and
// organization ownership are preserved from the stored record.
func (s *AutomationService) Update(ctx context.Context, organizationID, id string, automation *models.Automation) (*models.Automation, error) {
	existing, err := s.automations.GetByID(ctx, organizationID, id)
	if err != nil {
		return nil, err
	}

	automation.ID = existing.ID
	automation.OrganizationID = existing.OrganizationID
	automation.CreatedAt = existing.CreatedAt
	automation.UpdatedAt = time.Now().UTC()
	automation.DeletedAt = nil

	if err := s.validateAutomation(automation); err != nil {
		return nil, err
	}

	if err := s.automations.Save(ctx, automation); err != nil {
		return nil, err
	}

	return automation, nil
}

// SetActive toggles the automation without touching the rest of the
// definition.
func (s *AutomationService) SetActive(ctx context.Context, organizationID, id string, active bool) (*models.Automation, error) {
	existing, err := s.automations.GetByID(ctx, organizationID, id)
	if err != nil {
		return nil, err
	}

	existing.IsActive = active
	existing.UpdatedAt = time.Now().UTC()

	if err := s.automations.Save(ctx, existing); err != nil {
		return nil, err
	}

	return existing, nil
}

// Get returns one automation of the organization.
func (s *AutomationService) Get(ctx context.Context, organizationID, id string) (*models.Automation, error) {
	return s.automations.GetByID(ctx, organizationID, id)
}

// List returns all of the organization's automations.
func (s *AutomationService) List(ctx context.Context, organizationID string) ([]*models.Automation, error) {
	return s.automations.GetAll(ctx, organizationID)
}

// Delete soft-deletes the automation.
func (s *AutomationService) Delete(ctx context.Context, organizationID, id string) error {
	if err := s.automations.Delete(ctx, organizationID, id); err != nil {
		return err
	}

	s.gate.InvalidateCount(ctx, organizationID)

	return nil
}

// ListRuns returns the organization's most recent automation runs.
func (s *AutomationService) ListRuns(ctx context.Context, organizationID string, limit int) ([]*models.AutomationRun, error) {
	return s.runs.ListRuns(ctx, organizationID, limit)
}

// validateAutomation checks struct tags, the trigger value, and each action
// descriptor. Unknown action kinds are rejected at write time so the executor
// only ever skips kinds that were retired after the automation was saved.
func (s *AutomationService) validateAutomation(automation *models.Automation) error {
	if err := s.validate.Struct(automation); err != nil {
		return fmt.Errorf("%w: %s", ErrValidation, err)
	}

	if !automation.Trigger.IsValid() {
		return fmt.Errorf("%w: unknown trigger %q", ErrValidation, automation.Trigger)
	}

	if len(automation.Actions) == 0 {
		return fmt.Errorf("%w: automation needs at least one action", ErrValidation)
	}

	for i, item := range automation.Actions {
		if !s.registry.IsRegistered(item.Kind) {
			return fmt.Errorf("%w: action %d has unknown kind %q", ErrValidation, i, item.Kind)
		}
	}

	return nil
}
