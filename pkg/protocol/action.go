// Package protocol defines the interfaces action handlers implement.
package protocol

import (
	"context"
	"log/slog"

	"github.com/emeraldhq/pulse/pkg/models"
)

// Action is a single side-effecting step created from an action descriptor.
// Execute must return an error rather than panic; the registry boundary still
// guards against misbehaving handlers.
type Action interface {
	Execute(ctx context.Context, scope models.ExecutionScope, logger *slog.Logger) (any, error)
}

// ActionFactory builds Action instances for one action kind.
type ActionFactory interface {
	// Kind returns the action kind this factory serves.
	Kind() models.ActionKind

	// Name returns a human-readable name for the action.
	Name() string

	// Description returns a brief description of what the action does.
	Description() string

	// Schema returns the JSON schema the configuration payload must satisfy.
	Schema() map[string]any

	// Create builds an action from a configuration payload.
	Create(config map[string]any) (Action, error)
}
