package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/emeraldhq/pulse/pkg/actions/sendemail"
	"github.com/emeraldhq/pulse/pkg/actions/sendwhatsapp"
	"github.com/emeraldhq/pulse/pkg/integrations/email"
	"github.com/emeraldhq/pulse/pkg/mocks"
	"github.com/emeraldhq/pulse/pkg/models"
	"github.com/emeraldhq/pulse/pkg/registry"
)

func TestDispatcher_Dispatch_RunsMatchesInCreationOrder(t *testing.T) {
	var order []string

	reg := registry.NewRegistry(testLogger())
	reg.Register(&stubFactory{kind: "RECORD", execute: func(_ context.Context, scope models.ExecutionScope) (any, error) {
		order = append(order, scope.Automation.ID)

		return nil, nil
	}})

	older := &models.Automation{
		ID:             "auto-older",
		OrganizationID: "org-1",
		Name:           "Older automation",
		Trigger:        models.TriggerNewLead,
		Actions:        []models.ActionItem{{Kind: "RECORD"}},
		IsActive:       true,
		CreatedAt:      time.Now().Add(-time.Hour),
	}
	newer := &models.Automation{
		ID:             "auto-newer",
		OrganizationID: "org-1",
		Name:           "Newer automation",
		Trigger:        models.TriggerNewLead,
		Actions:        []models.ActionItem{{Kind: "RECORD"}},
		IsActive:       true,
		CreatedAt:      time.Now(),
	}

	automations := new(mocks.MockAutomationRepository)
	automations.On("FindActive", mock.Anything, "org-1", models.TriggerNewLead).
		Return([]*models.Automation{older, newer}, nil)

	dispatcher := NewDispatcher(testLogger(), automations, NewExecutor(testLogger(), reg))

	runs := dispatcher.Dispatch(context.Background(), testEvent())

	require.Len(t, runs, 2)
	assert.Equal(t, []string{"auto-older", "auto-newer"}, order)
	assert.Equal(t, "auto-older", runs[0].AutomationID)
	assert.Equal(t, "auto-newer", runs[1].AutomationID)
}

func TestDispatcher_Dispatch_LookupFailureYieldsNoRuns(t *testing.T) {
	automations := new(mocks.MockAutomationRepository)
	automations.On("FindActive", mock.Anything, "org-1", models.TriggerNewLead).
		Return(nil, errors.New("connection refused"))

	dispatcher := NewDispatcher(testLogger(), automations, NewExecutor(testLogger(), registry.NewRegistry(testLogger())))

	runs := dispatcher.Dispatch(context.Background(), testEvent())

	assert.Nil(t, runs)
}

func TestDispatcher_Dispatch_NoMatches(t *testing.T) {
	automations := new(mocks.MockAutomationRepository)
	automations.On("FindActive", mock.Anything, "org-1", models.TriggerNewLead).
		Return([]*models.Automation{}, nil)

	dispatcher := NewDispatcher(testLogger(), automations, NewExecutor(testLogger(), registry.NewRegistry(testLogger())))

	runs := dispatcher.Dispatch(context.Background(), testEvent())

	assert.Empty(t, runs)
}

func TestDispatcher_Dispatch_DropsInvalidEvents(t *testing.T) {
	automations := new(mocks.MockAutomationRepository)
	dispatcher := NewDispatcher(testLogger(), automations, NewExecutor(testLogger(), registry.NewRegistry(testLogger())))

	runs := dispatcher.Dispatch(context.Background(), models.Event{
		OrganizationID: "",
		Type:           models.TriggerNewLead,
	})
	assert.Nil(t, runs)

	runs = dispatcher.Dispatch(context.Background(), models.Event{
		OrganizationID: "org-1",
		Type:           "SOLSTICE",
	})
	assert.Nil(t, runs)

	automations.AssertNotCalled(t, "FindActive", mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatcher_Dispatch_FailingAutomationDoesNotBlockNext(t *testing.T) {
	var secondRan bool

	reg := registry.NewRegistry(testLogger())
	reg.Register(&stubFactory{kind: "FAILING", execute: func(_ context.Context, _ models.ExecutionScope) (any, error) {
		return nil, errors.New("provider unavailable")
	}})
	reg.Register(&stubFactory{kind: "RECORD", execute: func(_ context.Context, _ models.ExecutionScope) (any, error) {
		secondRan = true

		return nil, nil
	}})

	failing := &models.Automation{
		ID:             "auto-failing",
		OrganizationID: "org-1",
		Trigger:        models.TriggerNewLead,
		Actions:        []models.ActionItem{{Kind: "FAILING"}},
		IsActive:       true,
	}
	healthy := &models.Automation{
		ID:             "auto-healthy",
		OrganizationID: "org-1",
		Trigger:        models.TriggerNewLead,
		Actions:        []models.ActionItem{{Kind: "RECORD"}},
		IsActive:       true,
	}

	automations := new(mocks.MockAutomationRepository)
	automations.On("FindActive", mock.Anything, "org-1", models.TriggerNewLead).
		Return([]*models.Automation{failing, healthy}, nil)

	dispatcher := NewDispatcher(testLogger(), automations, NewExecutor(testLogger(), reg))

	runs := dispatcher.Dispatch(context.Background(), testEvent())

	require.Len(t, runs, 2)
	assert.True(t, secondRan)
	assert.Equal(t, models.RunStatusFailed, runs[0].Status)
	assert.Equal(t, models.RunStatusSucceeded, runs[1].Status)
}

// Welcome-flow scenario: a lead signs up and one automation greets them over
// both email and WhatsApp.
func TestDispatcher_Dispatch_NewLeadWelcomeFlow(t *testing.T) {
	mailer := new(mocks.MockMailer)
	mailer.On("SendNotification", mock.Anything, "dana@example.com", mock.Anything, mock.Anything).
		Return(email.Result{MessageID: "msg_1"}, nil)

	sender := new(mocks.MockWhatsAppSender)
	sender.On("SendMessage", mock.Anything, mock.Anything).Return("wamid.ABC", nil)

	reg := registry.NewRegistry(testLogger())
	reg.Register(sendemail.NewFactory(mailer))
	reg.Register(sendwhatsapp.NewFactory(sender))

	welcome := &models.Automation{
		ID:             "auto-welcome",
		OrganizationID: "org-1",
		Name:           "Welcome new leads",
		Trigger:        models.TriggerNewLead,
		Actions: []models.ActionItem{
			{Kind: models.ActionSendEmail, Configuration: map[string]any{
				"subject": "Welcome aboard",
				"body":    "Hi {{.data.name}}, thanks for signing up!",
			}},
			{Kind: models.ActionSendWhatsApp, Configuration: map[string]any{
				"message": "Hi {{.data.name}}!",
			}},
		},
		IsActive: true,
	}

	automations := new(mocks.MockAutomationRepository)
	automations.On("FindActive", mock.Anything, "org-1", models.TriggerNewLead).
		Return([]*models.Automation{welcome}, nil)

	dispatcher := NewDispatcher(testLogger(), automations, NewExecutor(testLogger(), reg))

	runs := dispatcher.Dispatch(context.Background(), models.Event{
		OrganizationID: "org-1",
		Type:           models.TriggerNewLead,
		Data: map[string]any{
			"name":  "Dana",
			"email": "dana@example.com",
			"phone": "+971501234567",
		},
		FiredAt: time.Now().UTC(),
	})

	require.Len(t, runs, 1)
	assert.Equal(t, models.RunStatusSucceeded, runs[0].Status)

	mailer.AssertExpectations(t)
	sender.AssertExpectations(t)
}

// Degraded-provider scenario: the email provider is down, the WhatsApp
// message still goes out and the run is recorded as partial.
func TestDispatcher_Dispatch_EmailOutageStillSendsWhatsApp(t *testing.T) {
	mailer := new(mocks.MockMailer)
	mailer.On("SendNotification", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(email.Result{}, errors.New("550 relay unavailable"))

	sender := new(mocks.MockWhatsAppSender)
	sender.On("SendMessage", mock.Anything, mock.Anything).Return("wamid.DEF", nil)

	reg := registry.NewRegistry(testLogger())
	reg.Register(sendemail.NewFactory(mailer))
	reg.Register(sendwhatsapp.NewFactory(sender))

	welcome := &models.Automation{
		ID:             "auto-welcome",
		OrganizationID: "org-1",
		Trigger:        models.TriggerNewLead,
		Actions: []models.ActionItem{
			{Kind: models.ActionSendEmail},
			{Kind: models.ActionSendWhatsApp},
		},
		IsActive: true,
	}

	automations := new(mocks.MockAutomationRepository)
	automations.On("FindActive", mock.Anything, "org-1", models.TriggerNewLead).
		Return([]*models.Automation{welcome}, nil)

	dispatcher := NewDispatcher(testLogger(), automations, NewExecutor(testLogger(), reg))

	runs := dispatcher.Dispatch(context.Background(), models.Event{
		OrganizationID: "org-1",
		Type:           models.TriggerNewLead,
		Data: map[string]any{
			"email": "dana@example.com",
			"phone": "+971501234567",
		},
		FiredAt: time.Now().UTC(),
	})

	require.Len(t, runs, 1)
	assert.Equal(t, models.RunStatusPartial, runs[0].Status)

	require.Len(t, runs[0].Results, 2)
	assert.Equal(t, models.ActionStatusFailed, runs[0].Results[0].Status)
	assert.Equal(t, models.ActionStatusSucceeded, runs[0].Results[1].Status)

	sender.AssertExpectations(t)
}
