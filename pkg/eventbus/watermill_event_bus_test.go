package eventbus_test

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emeraldhq/pulse/pkg/channels/gochannel"
	"github.com/emeraldhq/pulse/pkg/eventbus"
	"github.com/emeraldhq/pulse/pkg/events"
	"github.com/emeraldhq/pulse/pkg/models"
)

func newTestBus(t *testing.T) eventbus.EventBus {
	t.Helper()

	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	return eventbus.NewWatermillEventBus(pub, sub)
}

func TestWatermillEventBus_PublishAndHandle(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := newTestBus(t)

	received := make(chan *events.EventFired, 1)

	err := bus.Handle(events.EventFiredEvent, func(_ context.Context, event any) error {
		fired, ok := event.(*events.EventFired)
		if ok {
			received <- fired
		}

		return nil
	})
	require.NoError(t, err)
	require.NoError(t, bus.Subscribe(ctx))

	fired := events.NewEventFired(models.Event{
		OrganizationID: "org-1",
		Type:           models.TriggerNewLead,
		Data:           map[string]any{"name": "Dana"},
		FiredAt:        time.Now().UTC(),
	})

	require.NoError(t, bus.Publish(ctx, "org-1", fired))

	select {
	case got := <-received:
		assert.Equal(t, "org-1", got.OrganizationID)
		assert.Equal(t, models.TriggerNewLead, got.Trigger)
		assert.Equal(t, "Dana", got.Data["name"])
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestWatermillEventBus_UnhandledTypesAreDropped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := newTestBus(t)

	received := make(chan struct{}, 1)

	err := bus.Handle(events.AutomationFinishedEvent, func(_ context.Context, _ any) error {
		received <- struct{}{}

		return nil
	})
	require.NoError(t, err)
	require.NoError(t, bus.Subscribe(ctx))

	// No handler registered for this type.
	fired := events.NewEventFired(models.Event{
		OrganizationID: "org-1",
		Type:           models.TriggerNewLead,
	})
	require.NoError(t, bus.Publish(ctx, "org-1", fired))

	select {
	case <-received:
		t.Fatal("handler for a different event type should not fire")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatermillEventBus_GenerateID(t *testing.T) {
	bus := newTestBus(t)

	first := bus.GenerateID()
	second := bus.GenerateID()

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}
