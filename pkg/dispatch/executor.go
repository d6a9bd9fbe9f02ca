// Package dispatch implements the automation core: resolving fired business
// events to matching automations and running their action lists with
// per-action failure isolation.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/emeraldhq/pulse/pkg/eventbus"
	"github.com/emeraldhq/pulse/pkg/events"
	"github.com/emeraldhq/pulse/pkg/models"
	"github.com/emeraldhq/pulse/pkg/otelhelper"
	"github.com/emeraldhq/pulse/pkg/persistence"
	"github.com/emeraldhq/pulse/pkg/registry"
)

const defaultActionTimeout = 30 * time.Second

// Executor runs one matched automation's action list to completion. A failing
// action never halts the remaining actions of the same automation.
type Executor struct {
	logger        *slog.Logger
	registry      *registry.Registry
	runs          persistence.RunRepository
	publisher     eventbus.EventPublisher
	tracer        trace.Tracer
	actionTimeout time.Duration
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithRunRepository enables best-effort persistence of run records.
func WithRunRepository(runs persistence.RunRepository) ExecutorOption {
	return func(e *Executor) {
		e.runs = runs
	}
}

// WithPublisher enables best-effort lifecycle event publishing.
func WithPublisher(publisher eventbus.EventPublisher) ExecutorOption {
	return func(e *Executor) {
		e.publisher = publisher
	}
}

// WithActionTimeout bounds each collaborator call. Timeouts are ordinary
// recoverable action failures.
func WithActionTimeout(timeout time.Duration) ExecutorOption {
	return func(e *Executor) {
		e.actionTimeout = timeout
	}
}

func NewExecutor(logger *slog.Logger, reg *registry.Registry, opts ...ExecutorOption) *Executor {
	executor := &Executor{
		logger:        logger.With("module", "executor"),
		registry:      reg,
		tracer:        otel.Tracer("pulse.dispatch"),
		actionTimeout: defaultActionTimeout,
	}

	for _, opt := range opts {
		opt(executor)
	}

	return executor
}

// Run executes the automation's actions in stored order against the event.
// It never returns an error: every per-action outcome is captured in the
// returned run record, and persisting or publishing the record is best
// effort.
func (e *Executor) Run(ctx context.Context, automation *models.Automation, event models.Event) *models.AutomationRun {
	run := &models.AutomationRun{
		ID:             "run-" + uuid.New().String(),
		AutomationID:   automation.ID,
		OrganizationID: automation.OrganizationID,
		Trigger:        event.Type,
		Results:        make([]models.ActionResult, 0, len(automation.Actions)),
		StartedAt:      time.Now().UTC(),
	}

	logger := e.logger.With(
		"automation_id", automation.ID,
		"automation_name", automation.Name,
		"organization_id", automation.OrganizationID,
		"run_id", run.ID,
	)

	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "automation.run",
		attribute.String(otelhelper.AutomationIDKey, automation.ID),
		attribute.String(otelhelper.OrganizationIDKey, automation.OrganizationID),
		attribute.String(otelhelper.TriggerKey, event.Type.String()),
		attribute.String(otelhelper.RunIDKey, run.ID),
	)
	defer span.End()

	logger.Info("Executing automation", "actions", len(automation.Actions))

	e.publish(ctx, logger, automation.OrganizationID, events.AutomationTriggered{
		BaseEvent:    events.NewBaseEvent(events.AutomationTriggeredEvent, automation.OrganizationID),
		AutomationID: automation.ID,
		RunID:        run.ID,
		Trigger:      event.Type,
	})

	scope := models.ExecutionScope{
		RunID:      run.ID,
		Automation: automation,
		Event:      event,
	}

	for _, item := range automation.Actions {
		result := e.executeAction(ctx, logger, scope, item)
		run.Results = append(run.Results, result)

		if result.Status == models.ActionStatusFailed {
			e.publish(ctx, logger, automation.OrganizationID, events.ActionFailed{
				BaseEvent:    events.NewBaseEvent(events.ActionFailedEvent, automation.OrganizationID),
				AutomationID: automation.ID,
				RunID:        run.ID,
				ActionKind:   item.Kind,
				Error:        result.Error,
			})
		}
	}

	run.FinishedAt = time.Now().UTC()
	run.Resolve()

	duration := run.FinishedAt.Sub(run.StartedAt)

	switch run.Status {
	case models.RunStatusFailed:
		otelhelper.SetError(span, fmt.Errorf("all actions failed"))
		e.publish(ctx, logger, automation.OrganizationID, events.AutomationFailed{
			BaseEvent:    events.NewBaseEvent(events.AutomationFailedEvent, automation.OrganizationID),
			AutomationID: automation.ID,
			RunID:        run.ID,
			Error:        "all actions failed",
			Duration:     duration,
		})
	default:
		e.publish(ctx, logger, automation.OrganizationID, events.AutomationFinished{
			BaseEvent:    events.NewBaseEvent(events.AutomationFinishedEvent, automation.OrganizationID),
			AutomationID: automation.ID,
			RunID:        run.ID,
			Status:       run.Status,
			Duration:     duration,
		})
	}

	e.saveRun(ctx, logger, run)

	logger.Info("Completed automation execution", "status", run.Status, "duration", duration)

	return run
}

// executeAction dispatches one action descriptor and reports its outcome. It
// absorbs every failure mode (malformed descriptor, unregistered kind,
// rejected configuration, handler error, panic, timeout) so the caller's loop
// always proceeds to the next action.
func (e *Executor) executeAction(ctx context.Context, logger *slog.Logger, scope models.ExecutionScope, item models.ActionItem) (result models.ActionResult) {
	started := time.Now()

	result = models.ActionResult{Kind: item.Kind}

	defer func() {
		if recovered := recover(); recovered != nil {
			result.Status = models.ActionStatusFailed
			result.Error = fmt.Sprintf("action handler panicked: %v", recovered)

			logger.Error("Action handler panicked",
				"action_kind", item.Kind,
				"panic", recovered)
		}

		result.DurationMs = time.Since(started).Milliseconds()
	}()

	if item.Kind == "" {
		logger.Warn("Skipping malformed action descriptor with no kind")

		result.Status = models.ActionStatusSkipped
		result.Error = "action descriptor has no kind"

		return result
	}

	logger = logger.With("action_kind", item.Kind)

	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "automation.action",
		attribute.String(otelhelper.ActionKindKey, string(item.Kind)),
		attribute.String(otelhelper.RunIDKey, scope.RunID),
	)
	defer span.End()

	action, err := e.registry.Create(item.Kind, item.Configuration)
	if err != nil {
		if errors.Is(err, registry.ErrActionNotRegistered) {
			logger.Warn("Unknown action kind, skipping", "error", err)

			result.Status = models.ActionStatusSkipped
			result.Error = err.Error()

			return result
		}

		otelhelper.SetError(span, err)
		logger.Error("Failed to create action", "error", err)

		result.Status = models.ActionStatusFailed
		result.Error = err.Error()

		return result
	}

	actionCtx, cancel := context.WithTimeout(ctx, e.actionTimeout)
	defer cancel()

	output, err := action.Execute(actionCtx, scope, logger)
	if err != nil {
		otelhelper.SetError(span, err)
		logger.Error("Action failed", "error", err)

		result.Status = models.ActionStatusFailed
		result.Error = err.Error()

		return result
	}

	result.Status = models.ActionStatusSucceeded
	result.Output = output

	return result
}

func (e *Executor) publish(ctx context.Context, logger *slog.Logger, key string, event eventbus.Event) {
	if e.publisher == nil {
		return
	}

	if err := e.publisher.Publish(ctx, key, event); err != nil {
		logger.Warn("Failed to publish lifecycle event", "event_type", event.GetType(), "error", err)
	}
}

func (e *Executor) saveRun(ctx context.Context, logger *slog.Logger, run *models.AutomationRun) {
	if e.runs == nil {
		return
	}

	if err := e.runs.SaveRun(ctx, run); err != nil {
		logger.Warn("Failed to persist automation run", "error", err)
	}
}
