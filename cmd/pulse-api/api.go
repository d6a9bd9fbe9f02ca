// Package main provides the pulse API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/emeraldhq/pulse/pkg/dispatch"
	"github.com/emeraldhq/pulse/pkg/eventbus"
	"github.com/emeraldhq/pulse/pkg/gating"
	"github.com/emeraldhq/pulse/pkg/persistence"
	"github.com/emeraldhq/pulse/pkg/registry"
	"github.com/emeraldhq/pulse/pkg/services"
	"github.com/emeraldhq/pulse/pkg/web"
)

type API struct {
	logger              *slog.Logger
	persistence         persistence.Persistence
	registry            *registry.Registry
	eventBus            eventbus.EventBus
	gate                *gating.Gate
	dispatchMode        string
	whatsAppVerifyToken string
}

func NewAPI(
	logger *slog.Logger,
	p persistence.Persistence,
	reg *registry.Registry,
	eventBus eventbus.EventBus,
	gate *gating.Gate,
	dispatchMode string,
	whatsAppVerifyToken string,
) *API {
	return &API{
		logger:              logger,
		persistence:         p,
		registry:            reg,
		eventBus:            eventBus,
		gate:                gate,
		dispatchMode:        dispatchMode,
		whatsAppVerifyToken: whatsAppVerifyToken,
	}
}

// firer picks how fired events reach the dispatcher. Inline mode runs
// automations in this process, remote mode hands them to a pulse-worker over
// the event bus.
func (a *API) firer() web.EventFirer {
	if a.dispatchMode == "remote" {
		return dispatch.NewRemoteBus(a.logger, a.eventBus)
	}

	executor := dispatch.NewExecutor(a.logger, a.registry,
		dispatch.WithRunRepository(a.persistence.RunRepository()),
		dispatch.WithPublisher(a.eventBus),
	)
	dispatcher := dispatch.NewDispatcher(a.logger, a.persistence.AutomationRepository(), executor)

	return dispatch.NewBus(a.logger, dispatcher)
}

func (a *API) App() *fiber.App {
	automationService := services.NewAutomationService(
		a.logger,
		a.persistence.AutomationRepository(),
		a.persistence.RunRepository(),
		a.gate,
		a.registry,
	)

	handlers := web.NewAPIHandlers(automationService, a.firer(), a.registry, a.whatsAppVerifyToken)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker(healthcheck.Config{
		Probe: func(c fiber.Ctx) bool {
			return a.persistence.HealthCheck(c.Context()) == nil
		},
	}))

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Pulse API")
	})

	org := app.Group("/organizations/:orgID")
	org.Get("/automations", handlers.ListAutomations)
	org.Post("/automations", handlers.CreateAutomation)
	org.Get("/automations/:id", handlers.GetAutomation)
	org.Put("/automations/:id", handlers.UpdateAutomation)
	org.Patch("/automations/:id/active", handlers.SetAutomationActive)
	org.Delete("/automations/:id", handlers.DeleteAutomation)
	org.Get("/runs", handlers.ListRuns)
	org.Post("/events", handlers.FireEvent)

	app.Get("/actions", handlers.ListActionKinds)

	app.Get("/webhooks/whatsapp/:orgID", handlers.VerifyWhatsAppWebhook)
	app.Post("/webhooks/whatsapp/:orgID", handlers.ReceiveWhatsAppWebhook)

	return app
}

func (a *API) Start(port int) error {
	return a.App().Listen(":" + strconv.Itoa(port))
}
