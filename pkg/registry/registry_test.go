package registry

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emeraldhq/pulse/pkg/models"
	"github.com/emeraldhq/pulse/pkg/protocol"
)

type fakeFactory struct {
	kind   models.ActionKind
	schema map[string]any
}

func (f *fakeFactory) Kind() models.ActionKind { return f.kind }
func (f *fakeFactory) Name() string            { return string(f.kind) }
func (f *fakeFactory) Description() string     { return "fake action" }
func (f *fakeFactory) Schema() map[string]any  { return f.schema }

func (f *fakeFactory) Create(_ map[string]any) (protocol.Action, error) {
	return &fakeAction{}, nil
}

type fakeAction struct{}

func (a *fakeAction) Execute(_ context.Context, _ models.ExecutionScope, _ *slog.Logger) (any, error) {
	return nil, nil
}

func newTestRegistry() *Registry {
	return NewRegistry(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
}

func TestRegistry_RegisterAndCreate(t *testing.T) {
	reg := newTestRegistry()
	reg.Register(&fakeFactory{kind: "SEND_EMAIL"})

	assert.True(t, reg.IsRegistered("SEND_EMAIL"))

	action, err := reg.Create("SEND_EMAIL", nil)

	require.NoError(t, err)
	assert.NotNil(t, action)
}

func TestRegistry_Create_UnknownKind(t *testing.T) {
	reg := newTestRegistry()

	action, err := reg.Create("SEND_FAX", nil)

	require.Error(t, err)
	assert.Nil(t, action)
	assert.ErrorIs(t, err, ErrActionNotRegistered)
}

func TestRegistry_Create_SchemaValidation(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"to": map[string]any{"type": "string"},
		},
		"required":             []string{"to"},
		"additionalProperties": false,
	}

	reg := newTestRegistry()
	reg.Register(&fakeFactory{kind: "SEND_EMAIL", schema: schema})

	t.Run("valid configuration", func(t *testing.T) {
		_, err := reg.Create("SEND_EMAIL", map[string]any{"to": "dana@example.com"})

		assert.NoError(t, err)
	})

	t.Run("missing required field", func(t *testing.T) {
		_, err := reg.Create("SEND_EMAIL", map[string]any{})

		assert.ErrorIs(t, err, ErrInvalidConfiguration)
	})

	t.Run("unexpected field", func(t *testing.T) {
		_, err := reg.Create("SEND_EMAIL", map[string]any{"to": "dana@example.com", "cc": "x"})

		assert.ErrorIs(t, err, ErrInvalidConfiguration)
	})

	t.Run("wrong type", func(t *testing.T) {
		_, err := reg.Create("SEND_EMAIL", map[string]any{"to": 42})

		assert.ErrorIs(t, err, ErrInvalidConfiguration)
	})
}

func TestRegistry_Kinds(t *testing.T) {
	reg := newTestRegistry()
	reg.Register(&fakeFactory{kind: "SEND_WHATSAPP"})
	reg.Register(&fakeFactory{kind: "CREATE_TASK"})
	reg.Register(&fakeFactory{kind: "SEND_EMAIL"})

	assert.Equal(t, []models.ActionKind{"CREATE_TASK", "SEND_EMAIL", "SEND_WHATSAPP"}, reg.Kinds())
}

func TestRegistry_Factory(t *testing.T) {
	reg := newTestRegistry()
	reg.Register(&fakeFactory{kind: "SEND_EMAIL"})

	factory, ok := reg.Factory("SEND_EMAIL")
	require.True(t, ok)
	assert.Equal(t, models.ActionKind("SEND_EMAIL"), factory.Kind())

	_, ok = reg.Factory("SEND_FAX")
	assert.False(t, ok)
}
