package dispatch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/emeraldhq/pulse/pkg/events"
	"github.com/emeraldhq/pulse/pkg/mocks"
	"github.com/emeraldhq/pulse/pkg/models"
)

func TestRemoteBus_FireEvent_PublishesEnvelope(t *testing.T) {
	publisher := new(mocks.MockEventBus)
	publisher.On("Publish", mock.Anything, "org-1", mock.AnythingOfType("events.EventFired")).Return(nil)

	bus := NewRemoteBus(testLogger(), publisher)

	bus.FireEvent("org-1", models.TriggerNewBooking, map[string]any{"booking_id": "bk-1"})
	bus.Wait()

	publisher.AssertExpectations(t)

	require.Len(t, publisher.Calls, 1)

	fired, ok := publisher.Calls[0].Arguments.Get(2).(events.EventFired)
	require.True(t, ok)
	assert.Equal(t, models.TriggerNewBooking, fired.Trigger)
	assert.Equal(t, "bk-1", fired.Data["booking_id"])
}

func TestRemoteBus_FireEvent_BrokerFailureIsAbsorbed(t *testing.T) {
	publisher := new(mocks.MockEventBus)
	publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker unavailable"))

	bus := NewRemoteBus(testLogger(), publisher)

	assert.NotPanics(t, func() {
		bus.FireEvent("org-1", models.TriggerNewLead, nil)
		bus.Wait()
	})
}
