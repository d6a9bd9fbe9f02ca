package dispatch

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/emeraldhq/pulse/pkg/models"
	"github.com/emeraldhq/pulse/pkg/otelhelper"
	"github.com/emeraldhq/pulse/pkg/persistence"
)

// Dispatcher matches a fired event against the organization's active
// automations and executes each match independently.
type Dispatcher struct {
	logger      *slog.Logger
	automations persistence.AutomationRepository
	executor    *Executor
	tracer      trace.Tracer
}

func NewDispatcher(logger *slog.Logger, automations persistence.AutomationRepository, executor *Executor) *Dispatcher {
	return &Dispatcher{
		logger:      logger.With("module", "dispatcher"),
		automations: automations,
		executor:    executor,
		tracer:      otel.Tracer("pulse.dispatch"),
	}
}

// Dispatch runs every active automation of the event's organization whose
// trigger matches the event type, in creation order. It never returns an
// error: a failed automation lookup yields no matches, and one automation's
// failure does not prevent the next from running.
func (d *Dispatcher) Dispatch(ctx context.Context, event models.Event) []*models.AutomationRun {
	logger := d.logger.With(
		"organization_id", event.OrganizationID,
		"trigger", event.Type,
	)

	if event.OrganizationID == "" {
		logger.Warn("Dropping event without organization")
		return nil
	}

	if !event.Type.IsValid() {
		logger.Warn("Dropping event with unknown trigger")
		return nil
	}

	ctx, span := otelhelper.StartSpan(ctx, d.tracer, "event.dispatch",
		attribute.String(otelhelper.OrganizationIDKey, event.OrganizationID),
		attribute.String(otelhelper.TriggerKey, event.Type.String()),
	)
	defer span.End()

	automations, err := d.automations.FindActive(ctx, event.OrganizationID, event.Type)
	if err != nil {
		otelhelper.SetError(span, err)
		logger.Error("Failed to look up automations, dropping event", "error", err)

		return nil
	}

	if len(automations) == 0 {
		logger.Debug("No active automations match event")
		return nil
	}

	logger.Info("Dispatching event", "matched", len(automations))

	runs := make([]*models.AutomationRun, 0, len(automations))

	for _, automation := range automations {
		runs = append(runs, d.runAutomation(ctx, logger, automation, event))
	}

	return runs
}

// runAutomation isolates one automation's execution so a misbehaving one
// cannot take down its siblings.
func (d *Dispatcher) runAutomation(ctx context.Context, logger *slog.Logger, automation *models.Automation, event models.Event) (run *models.AutomationRun) {
	defer func() {
		if recovered := recover(); recovered != nil {
			logger.Error("Automation execution panicked",
				"automation_id", automation.ID,
				"panic", recovered)
		}
	}()

	return d.executor.Run(ctx, automation, event)
}
