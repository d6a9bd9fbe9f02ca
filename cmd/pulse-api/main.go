package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/emeraldhq/pulse/pkg/cmd"
	"github.com/emeraldhq/pulse/pkg/gating"
	"github.com/emeraldhq/pulse/pkg/log"
	"github.com/emeraldhq/pulse/pkg/otelhelper"
)

const defaultPort = 9090

func main() {
	logger := log.WithModule("api")

	command := &cli.Command{
		Name:                  "pulse-api",
		Usage:                 "Manage automations and fire business events",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus provider (kafka, gochannel)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS"),
			},
			&cli.StringFlag{
				Name:    "dispatch-mode",
				Usage:   "Where fired events run: inline (this process) or remote (pulse-worker)",
				Value:   "inline",
				Sources: cli.EnvVars("DISPATCH_MODE"),
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis URL for plan gating caches (empty disables caching)",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.StringFlag{
				Name:    "whatsapp-verify-token",
				Usage:   "Token Meta echoes during WhatsApp webhook verification",
				Sources: cli.EnvVars("WHATSAPP_VERIFY_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Export traces over OTLP",
				Sources: cli.EnvVars("TRACING_ENABLED"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger.InfoContext(ctx, "Initializing Pulse API")

			if command.Bool("tracing") {
				if _, err := otelhelper.NewTracer(ctx, "pulse-api"); err != nil {
					logger.WarnContext(ctx, "Failed to initialize tracer", "error", err)
				}
			}

			registry := cmd.NewRegistry(logger)
			persistence := cmd.NewPersistence(ctx, logger, command.String("database-url"))

			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus := cmd.NewEventBus(command.String("event-bus"), "pulse-api", logger)
			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			gateOpts := []gating.GateOption{}
			if client := cmd.NewRedisClient(command.String("redis-url")); client != nil {
				gateOpts = append(gateOpts, gating.WithCache(client))
			}

			gate := gating.NewGate(logger, persistence.AutomationRepository(), gateOpts...)

			api := NewAPI(
				logger,
				persistence,
				registry,
				eventBus,
				gate,
				command.String("dispatch-mode"),
				command.String("whatsapp-verify-token"),
			)

			if err := api.Start(command.Int("port")); err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)

				return err
			}

			return nil
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		logger.Error("Failed to run pulse-api", "error", err)
		os.Exit(1)
	}
}
