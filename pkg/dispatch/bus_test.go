package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/emeraldhq/pulse/pkg/mocks"
	"github.com/emeraldhq/pulse/pkg/models"
	"github.com/emeraldhq/pulse/pkg/registry"
)

func TestBus_FireEvent_DoesNotBlockCaller(t *testing.T) {
	var (
		mu  sync.Mutex
		ran bool
	)

	reg := registry.NewRegistry(testLogger())
	reg.Register(&stubFactory{kind: "SLOW", execute: func(_ context.Context, _ models.ExecutionScope) (any, error) {
		time.Sleep(100 * time.Millisecond)

		mu.Lock()
		ran = true
		mu.Unlock()

		return nil, nil
	}})

	automation := &models.Automation{
		ID:             "auto-1",
		OrganizationID: "org-1",
		Trigger:        models.TriggerNewLead,
		Actions:        []models.ActionItem{{Kind: "SLOW"}},
		IsActive:       true,
	}

	automations := new(mocks.MockAutomationRepository)
	automations.On("FindActive", mock.Anything, "org-1", models.TriggerNewLead).
		Return([]*models.Automation{automation}, nil)

	bus := NewBus(testLogger(), NewDispatcher(testLogger(), automations, NewExecutor(testLogger(), reg)))

	started := time.Now()
	bus.FireEvent("org-1", models.TriggerNewLead, map[string]any{"name": "Dana"})
	elapsed := time.Since(started)

	assert.Less(t, elapsed, 50*time.Millisecond, "FireEvent must return before dispatch finishes")

	bus.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.True(t, ran)
}

func TestBus_FireEvent_LookupFailureIsInvisibleToCaller(t *testing.T) {
	automations := new(mocks.MockAutomationRepository)
	automations.On("FindActive", mock.Anything, "org-1", models.TriggerNewLead).
		Return(nil, errors.New("database is down"))

	bus := NewBus(testLogger(), NewDispatcher(testLogger(), automations, NewExecutor(testLogger(), registry.NewRegistry(testLogger()))))

	assert.NotPanics(t, func() {
		bus.FireEvent("org-1", models.TriggerNewLead, nil)
		bus.Wait()
	})

	automations.AssertExpectations(t)
}

func TestBus_NamedWrappersFireTheMatchingTrigger(t *testing.T) {
	cases := []struct {
		name    string
		fire    func(bus *Bus)
		trigger models.Trigger
	}{
		{"new lead", func(b *Bus) { b.FireNewLead("org-1", nil) }, models.TriggerNewLead},
		{"new booking", func(b *Bus) { b.FireNewBooking("org-1", nil) }, models.TriggerNewBooking},
		{"new message", func(b *Bus) { b.FireNewMessage("org-1", nil) }, models.TriggerNewMessage},
		{"lead stage changed", func(b *Bus) { b.FireLeadStageChanged("org-1", nil) }, models.TriggerLeadStageChanged},
		{"booking confirmed", func(b *Bus) { b.FireBookingConfirmed("org-1", nil) }, models.TriggerBookingConfirmed},
		{"booking cancelled", func(b *Bus) { b.FireBookingCancelled("org-1", nil) }, models.TriggerBookingCancelled},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			automations := new(mocks.MockAutomationRepository)
			automations.On("FindActive", mock.Anything, "org-1", tc.trigger).
				Return([]*models.Automation{}, nil)

			bus := NewBus(testLogger(), NewDispatcher(testLogger(), automations, NewExecutor(testLogger(), registry.NewRegistry(testLogger()))))

			tc.fire(bus)
			bus.Wait()

			automations.AssertExpectations(t)
		})
	}
}

func TestBus_FireEvent_DispatchHasOwnDeadline(t *testing.T) {
	var sawDeadline bool

	reg := registry.NewRegistry(testLogger())
	reg.Register(&stubFactory{kind: "CHECK", execute: func(ctx context.Context, _ models.ExecutionScope) (any, error) {
		_, sawDeadline = ctx.Deadline()

		return nil, nil
	}})

	automation := &models.Automation{
		ID:             "auto-1",
		OrganizationID: "org-1",
		Trigger:        models.TriggerNewLead,
		Actions:        []models.ActionItem{{Kind: "CHECK"}},
		IsActive:       true,
	}

	automations := new(mocks.MockAutomationRepository)
	automations.On("FindActive", mock.Anything, "org-1", models.TriggerNewLead).
		Return([]*models.Automation{automation}, nil)

	bus := NewBus(testLogger(), NewDispatcher(testLogger(), automations, NewExecutor(testLogger(), reg)),
		WithDispatchTimeout(time.Second))

	bus.FireEvent("org-1", models.TriggerNewLead, nil)
	bus.Wait()

	assert.True(t, sawDeadline)
}
