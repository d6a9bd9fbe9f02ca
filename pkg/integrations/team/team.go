// Package team provides the member-notification collaborator boundary. No
// real channel is wired yet; the bundled notifier logs the request so
// automations keep their skip-with-log behavior at the provider edge.
package team

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Notifier notifies an organization's members.
type Notifier interface {
	NotifyMembers(ctx context.Context, organizationID, message string) error
}

// StubNotifier is the placeholder implementation used until a notification
// channel is integrated.
type StubNotifier struct {
	logger *slog.Logger
}

func NewStubNotifier(logger *slog.Logger) *StubNotifier {
	return &StubNotifier{logger: logger.With("module", "team")}
}

func (n *StubNotifier) NotifyMembers(ctx context.Context, organizationID, message string) error {
	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("team notification has no message")
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	n.logger.Info("Team notification is stubbed, no channel integrated",
		"organization_id", organizationID,
		"message", message)

	return nil
}
