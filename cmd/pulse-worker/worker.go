package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/emeraldhq/pulse/pkg/dispatch"
	"github.com/emeraldhq/pulse/pkg/eventbus"
	"github.com/emeraldhq/pulse/pkg/events"
	"github.com/emeraldhq/pulse/pkg/persistence"
	"github.com/emeraldhq/pulse/pkg/registry"
)

// retentionSchedule runs the run-record sweep nightly, off-peak.
const retentionSchedule = "0 3 * * *"

// WorkerManager consumes fired events from the bus, dispatches them to the
// matching automations, and sweeps old run records on a schedule.
type WorkerManager struct {
	id            string
	logger        *slog.Logger
	persistence   persistence.Persistence
	registry      *registry.Registry
	eventBus      eventbus.EventBus
	dispatcher    *dispatch.Dispatcher
	retentionDays int
	cron          *cron.Cron
}

func NewWorkerManager(
	id string,
	p persistence.Persistence,
	eventBus eventbus.EventBus,
	logger *slog.Logger,
	reg *registry.Registry,
	retentionDays int,
) *WorkerManager {
	logger = logger.With("module", "pulse-worker", "worker_id", id)

	executor := dispatch.NewExecutor(logger, reg,
		dispatch.WithRunRepository(p.RunRepository()),
		dispatch.WithPublisher(eventBus),
	)

	return &WorkerManager{
		id:            id,
		logger:        logger,
		persistence:   p,
		registry:      reg,
		eventBus:      eventBus,
		dispatcher:    dispatch.NewDispatcher(logger, p.AutomationRepository(), executor),
		retentionDays: retentionDays,
		cron:          cron.New(),
	}
}

func (w *WorkerManager) Start(ctx context.Context) error {
	w.logger.InfoContext(ctx, "Starting worker manager")

	if err := w.eventBus.Handle(events.EventFiredEvent, w.handleEventFired); err != nil {
		return err
	}

	if err := w.eventBus.Subscribe(ctx); err != nil {
		w.logger.ErrorContext(ctx, "Failed to subscribe to event bus", "error", err)

		return err
	}

	if w.retentionDays > 0 {
		if _, err := w.cron.AddFunc(retentionSchedule, w.sweepRuns); err != nil {
			return err
		}

		w.cron.Start()
		defer w.cron.Stop()
	}

	w.logger.InfoContext(ctx, "Worker started successfully")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
	case <-ctx.Done():
	}

	w.logger.InfoContext(ctx, "Shutting down worker...")

	return nil
}

// handleEventFired dispatches one fired event. It always returns nil: a
// dispatch problem is not a reason to redeliver the event.
func (w *WorkerManager) handleEventFired(ctx context.Context, event any) error {
	firedEvent, ok := event.(*events.EventFired)
	if !ok {
		w.logger.ErrorContext(ctx, "Invalid event type for EventFired")

		return nil
	}

	logger := w.logger.With(
		"organization_id", firedEvent.OrganizationID,
		"trigger", firedEvent.Trigger,
		"event_id", firedEvent.ID,
	)
	logger.InfoContext(ctx, "Processing fired event")

	runs := w.dispatcher.Dispatch(ctx, firedEvent.Event())

	logger.InfoContext(ctx, "Finished dispatching fired event", "runs", len(runs))

	return nil
}

func (w *WorkerManager) sweepRuns() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := time.Now().AddDate(0, 0, -w.retentionDays)

	pruned, err := w.persistence.RunRepository().PruneRunsBefore(ctx, cutoff)
	if err != nil {
		w.logger.Error("Failed to prune automation runs", "error", err)

		return
	}

	w.logger.Info("Pruned automation runs", "removed", pruned, "cutoff", cutoff)
}
