package dispatch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/emeraldhq/pulse/pkg/eventbus"
	"github.com/emeraldhq/pulse/pkg/events"
	"github.com/emeraldhq/pulse/pkg/models"
)

const defaultPublishTimeout = 10 * time.Second

// RemoteBus fires events by publishing them to the event bus for a worker to
// dispatch. It has the same fire-and-forget surface as Bus: callers never
// block and never see a failure.
type RemoteBus struct {
	logger         *slog.Logger
	publisher      eventbus.EventPublisher
	publishTimeout time.Duration

	wg sync.WaitGroup
}

func NewRemoteBus(logger *slog.Logger, publisher eventbus.EventPublisher) *RemoteBus {
	return &RemoteBus{
		logger:         logger.With("module", "event_bus"),
		publisher:      publisher,
		publishTimeout: defaultPublishTimeout,
	}
}

// FireEvent publishes the event in the background. Broker failures are logged
// and absorbed.
func (b *RemoteBus) FireEvent(organizationID string, trigger models.Trigger, data map[string]any) {
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
				b.logger.Error("Recovered panic while publishing event",
					"organization_id", organizationID,
					"trigger", trigger,
					"panic", recovered)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), b.publishTimeout)
		defer cancel()

		if err := b.publisher.Publish(ctx, organizationID, events.NewEventFired(event)); err != nil {
			b.logger.Error("Failed to publish fired event",
				"organization_id", organizationID,
				"trigger", trigger,
				"error", err)
		}
	}()
}

// Wait blocks until in-flight publishes finish.
func (b *RemoteBus) Wait() {
	b.wg.Wait()
}
