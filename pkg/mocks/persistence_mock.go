// Package mocks provides testify mock implementations of the pulse
// interfaces for use in unit tests.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/emeraldhq/pulse/pkg/models"
)

// MockAutomationRepository is a mock implementation of persistence.AutomationRepository interface.
type MockAutomationRepository struct {
	mock.Mock
}

func (m *MockAutomationRepository) FindActive(ctx context.Context, organizationID string, trigger models.Trigger) ([]*models.Automation, error) {
	args := m.Called(ctx, organizationID, trigger)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Automation), args.Error(1)
}

func (m *MockAutomationRepository) GetAll(ctx context.Context, organizationID string) ([]*models.Automation, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Automation), args.Error(1)
}

func (m *MockAutomationRepository) GetByID(ctx context.Context, organizationID, id string) (*models.Automation, error) {
	args := m.Called(ctx, organizationID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Automation), args.Error(1)
}

func (m *MockAutomationRepository) Save(ctx context.Context, automation *models.Automation) error {
	args := m.Called(ctx, automation)

	return args.Error(0)
}

func (m *MockAutomationRepository) Delete(ctx context.Context, organizationID, id string) error {
	args := m.Called(ctx, organizationID, id)

	return args.Error(0)
}

func (m *MockAutomationRepository) Count(ctx context.Context, organizationID string) (int64, error) {
	args := m.Called(ctx, organizationID)

	return args.Get(0).(int64), args.Error(1)
}

// MockRunRepository is a mock implementation of persistence.RunRepository interface.
type MockRunRepository struct {
	mock.Mock
}

func (m *MockRunRepository) SaveRun(ctx context.Context, run *models.AutomationRun) error {
	args := m.Called(ctx, run)

	return args.Error(0)
}

func (m *MockRunRepository) ListRuns(ctx context.Context, organizationID string, limit int) ([]*models.AutomationRun, error) {
	args := m.Called(ctx, organizationID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.AutomationRun), args.Error(1)
}

func (m *MockRunRepository) PruneRunsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)

	return args.Get(0).(int64), args.Error(1)
}
