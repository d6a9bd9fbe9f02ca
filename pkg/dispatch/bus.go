package dispatch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/emeraldhq/pulse/pkg/models"
)

const defaultDispatchTimeout = 60 * time.Second

// Bus is the fire-and-forget entry point product code calls when something
// happens in an organization. Firing an event never blocks the caller and
// never surfaces an error: dispatch happens on a detached goroutine with its
// own deadline, and every failure is logged and absorbed.
type Bus struct {
	logger          *slog.Logger
	dispatcher      *Dispatcher
	dispatchTimeout time.Duration

	wg sync.WaitGroup
}

// BusOption configures a Bus.
type BusOption func(*Bus)

// WithDispatchTimeout bounds each detached dispatch.
func WithDispatchTimeout(timeout time.Duration) BusOption {
	return func(b *Bus) {
		b.dispatchTimeout = timeout
	}
}

func NewBus(logger *slog.Logger, dispatcher *Dispatcher, opts ...BusOption) *Bus {
	bus := &Bus{
		logger:          logger.With("module", "event_bus"),
		dispatcher:      dispatcher,
		dispatchTimeout: defaultDispatchTimeout,
	}

	for _, opt := range opts {
		opt(bus)
	}

	return bus
}

// FireEvent records that trigger happened in organizationID and returns
// immediately. The matching automations run in the background.
func (b *Bus) FireEvent(organizationID string, trigger models.Trigger, data map[string]any) {
	event := models.Event{
		OrganizationID: organizationID,
		Type:           trigger,
		Data:           data,
		FiredAt:        time.Now().UTC(),
	}

	b.wg.Add(1)

	go func() {
		defer b.wg.Done()
		defer func() {
			if recovered := recover(); recovered != nil {
				b.logger.Error("Recovered panic during event dispatch",
					"organization_id", organizationID,
					"trigger", trigger,
					"panic", recovered)
			}
		}()

		// The caller's request context may be gone by the time this runs, so
		// dispatch gets its own deadline.
		ctx, cancel := context.WithTimeout(context.Background(), b.dispatchTimeout)
		defer cancel()

		b.dispatcher.Dispatch(ctx, event)
	}()
}

// Wait blocks until every in-flight dispatch has finished. Call it on
// shutdown so detached work is not cut off mid-run.
func (b *Bus) Wait() {
	b.wg.Wait()
}

// FireNewLead fires when a lead is created in the organization.
func (b *Bus) FireNewLead(organizationID string, data map[string]any) {
	b.FireEvent(organizationID, models.TriggerNewLead, data)
}

// FireNewBooking fires when a booking is created.
func (b *Bus) FireNewBooking(organizationID string, data map[string]any) {
	b.FireEvent(organizationID, models.TriggerNewBooking, data)
}

// FireNewMessage fires when an inbound customer message arrives.
func (b *Bus) FireNewMessage(organizationID string, data map[string]any) {
	b.FireEvent(organizationID, models.TriggerNewMessage, data)
}

// FireLeadStageChanged fires when a lead moves between pipeline stages.
func (b *Bus) FireLeadStageChanged(organizationID string, data map[string]any) {
	b.FireEvent(organizationID, models.TriggerLeadStageChanged, data)
}

// FireBookingConfirmed fires when a booking is confirmed.
func (b *Bus) FireBookingConfirmed(organizationID string, data map[string]any) {
	b.FireEvent(organizationID, models.TriggerBookingConfirmed, data)
}

// FireBookingCancelled fires when a booking is cancelled.
func (b *Bus) FireBookingCancelled(organizationID string, data map[string]any) {
	b.FireEvent(organizationID, models.TriggerBookingCancelled, data)
}
