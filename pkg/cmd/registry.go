// Package cmd provides common initialization for the pulse binaries.
package cmd

import (
	"log/slog"

	"github.com/emeraldhq/pulse/pkg/actions/createtask"
	"github.com/emeraldhq/pulse/pkg/actions/notifyteam"
	"github.com/emeraldhq/pulse/pkg/actions/sendemail"
	"github.com/emeraldhq/pulse/pkg/actions/sendwhatsapp"
	"github.com/emeraldhq/pulse/pkg/integrations/email"
	"github.com/emeraldhq/pulse/pkg/integrations/tasks"
	"github.com/emeraldhq/pulse/pkg/integrations/team"
	"github.com/emeraldhq/pulse/pkg/integrations/whatsapp"
	"github.com/emeraldhq/pulse/pkg/registry"
)

// NewRegistry builds the action registry with the native action kinds wired
// to their collaborators.
func NewRegistry(logger *slog.Logger) *registry.Registry {
	reg := registry.NewRegistry(logger)

	reg.Register(sendemail.NewFactory(email.NewSender(logger)))
	reg.Register(sendwhatsapp.NewFactory(whatsapp.NewClient(logger)))
	reg.Register(createtask.NewFactory(tasks.NewStubCreator(logger)))
	reg.Register(notifyteam.NewFactory(team.NewStubNotifier(logger)))

	return reg
}
