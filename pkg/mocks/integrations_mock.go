package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/emeraldhq/pulse/pkg/integrations/email"
	"github.com/emeraldhq/pulse/pkg/integrations/tasks"
	"github.com/emeraldhq/pulse/pkg/integrations/whatsapp"
)

// MockMailer is a mock implementation of email.Mailer interface.
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendNotification(ctx context.Context, to, subject, body string) (email.Result, error) {
	args := m.Called(ctx, to, subject, body)

	return args.Get(0).(email.Result), args.Error(1)
}

// MockWhatsAppSender is a mock implementation of whatsapp.Sender interface.
type MockWhatsAppSender struct {
	mock.Mock
}

func (m *MockWhatsAppSender) SendMessage(ctx context.Context, message whatsapp.Message) (string, error) {
	args := m.Called(ctx, message)

	return args.String(0), args.Error(1)
}

// MockTaskCreator is a mock implementation of tasks.Creator interface.
type MockTaskCreator struct {
	mock.Mock
}

func (m *MockTaskCreator) CreateTask(ctx context.Context, organizationID string, task tasks.Task) (string, error) {
	args := m.Called(ctx, organizationID, task)

	return args.String(0), args.Error(1)
}

// MockTeamNotifier is a mock implementation of team.Notifier interface.
type MockTeamNotifier struct {
	mock.Mock
}

func (m *MockTeamNotifier) NotifyMembers(ctx context.Context, organizationID, message string) error {
	args := m.Called(ctx, organizationID, message)

	return args.Error(0)
}
