// Package registry maps action kinds to their handler factories.
package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/xeipuuv/gojsonschema"

	"github.com/emeraldhq/pulse/pkg/models"
	"github.com/emeraldhq/pulse/pkg/protocol"
)

var (
	// ErrActionNotRegistered indicates no factory is registered for an action kind.
	ErrActionNotRegistered = errors.New("action kind not registered")

	// ErrInvalidConfiguration indicates an action configuration payload failed
	// its schema validation.
	ErrInvalidConfiguration = errors.New("invalid action configuration")
)

// Registry holds the closed set of action factories. It is populated at
// startup and read-only afterwards.
type Registry struct {
	logger    *slog.Logger
	factories map[models.ActionKind]protocol.ActionFactory
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:    logger.With("module", "registry"),
		factories: make(map[models.ActionKind]protocol.ActionFactory),
	}
}

// Register adds a factory, replacing any previous factory for the same kind.
func (r *Registry) Register(factory protocol.ActionFactory) {
	r.factories[factory.Kind()] = factory
}

// IsRegistered reports whether a factory exists for the kind.
func (r *Registry) IsRegistered(kind models.ActionKind) bool {
	_, ok := r.factories[kind]

	return ok
}

// Factory returns the registered factory for the kind, if any.
func (r *Registry) Factory(kind models.ActionKind) (protocol.ActionFactory, bool) {
	factory, ok := r.factories[kind]

	return factory, ok
}

// Kinds returns the registered action kinds in a stable order.
func (r *Registry) Kinds() []models.ActionKind {
	kinds := make([]models.ActionKind, 0, len(r.factories))
	for kind := range r.factories {
		kinds = append(kinds, kind)
	}

	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	return kinds
}

// Create validates the configuration against the factory's schema and builds
// the action. An unknown kind returns ErrActionNotRegistered; a payload that
// fails validation returns ErrInvalidConfiguration.
func (r *Registry) Create(kind models.ActionKind, config map[string]any) (protocol.Action, error) {
	factory, ok := r.factories[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrActionNotRegistered, kind)
	}

	if config == nil {
		config = map[string]any{}
	}

	if err := r.validateConfig(factory, config); err != nil {
		return nil, err
	}

	return factory.Create(config)
}

func (r *Registry) validateConfig(factory protocol.ActionFactory, config map[string]any) error {
	schema := factory.Schema()
	if schema == nil {
		return nil
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(schema),
		gojsonschema.NewGoLoader(config),
	)
	if err != nil {
		return fmt.Errorf("failed to validate configuration for %s: %w", factory.Kind(), err)
	}

	if !result.Valid() {
		for _, desc := range result.Errors() {
			r.logger.Warn("Action configuration rejected",
				"kind", factory.Kind(),
				"violation", desc.String())
		}

		return fmt.Errorf("%w: %s", ErrInvalidConfiguration, factory.Kind())
	}

	return nil
}
