package sendemail

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/emeraldhq/pulse/pkg/integrations/email"
	"github.com/emeraldhq/pulse/pkg/mocks"
	"github.com/emeraldhq/pulse/pkg/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testScope() models.ExecutionScope {
	return models.ExecutionScope{
		RunID: "run-1",
		Automation: &models.Automation{
			ID:   "auto-1",
			Name: "Welcome new leads",
		},
		Event: models.Event{
			OrganizationID: "org-1",
			Type:           models.TriggerNewLead,
			Data: map[string]any{
				"name":  "Dana",
				"email": "dana@example.com",
			},
		},
	}
}

func TestSendEmailAction_Execute_TemplatedRecipient(t *testing.T) {
	mailer := new(mocks.MockMailer)
	mailer.On("SendNotification", mock.Anything, "dana@example.com", "Hi Dana", "Welcome!").
		Return(email.Result{MessageID: "msg_1"}, nil)

	action := NewSendEmailAction(mailer, map[string]any{
		"to":      "{{.data.email}}",
		"subject": "Hi {{.data.name}}",
		"body":    "Welcome!",
	})

	output, err := action.Execute(context.Background(), testScope(), testLogger())

	require.NoError(t, err)

	out, ok := output.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "msg_1", out["message_id"])
	assert.Equal(t, "dana@example.com", out["to"])

	mailer.AssertExpectations(t)
}

func TestSendEmailAction_Execute_FallsBackToEventEmail(t *testing.T) {
	mailer := new(mocks.MockMailer)
	mailer.On("SendNotification", mock.Anything, "dana@example.com", mock.Anything, mock.Anything).
		Return(email.Result{MessageID: "msg_2"}, nil)

	action := NewSendEmailAction(mailer, map[string]any{})

	_, err := action.Execute(context.Background(), testScope(), testLogger())

	require.NoError(t, err)
	mailer.AssertExpectations(t)
}

func TestSendEmailAction_Execute_NoRecipient(t *testing.T) {
	mailer := new(mocks.MockMailer)

	action := NewSendEmailAction(mailer, map[string]any{})

	scope := testScope()
	scope.Event.Data = map[string]any{"name": "Dana"}

	_, err := action.Execute(context.Background(), scope, testLogger())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no resolvable email recipient")
	mailer.AssertNotCalled(t, "SendNotification", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSendEmailAction_Execute_MailerFailure(t *testing.T) {
	mailer := new(mocks.MockMailer)
	mailer.On("SendNotification", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(email.Result{}, errors.New("550 relay unavailable"))

	action := NewSendEmailAction(mailer, map[string]any{})

	_, err := action.Execute(context.Background(), testScope(), testLogger())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "550 relay unavailable")
}

func TestFactory_Metadata(t *testing.T) {
	factory := NewFactory(new(mocks.MockMailer))

	assert.Equal(t, models.ActionSendEmail, factory.Kind())
	assert.NotEmpty(t, factory.Name())
	assert.NotEmpty(t, factory.Description())
	assert.NotNil(t, factory.Schema())
}
