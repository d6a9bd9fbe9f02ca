package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/emeraldhq/pulse/pkg/persistence"
	"github.com/emeraldhq/pulse/pkg/persistence/file"
	"github.com/emeraldhq/pulse/pkg/persistence/postgresql"
)

// NewPersistence builds the storage layer from a database URL. Postgres URLs
// get the real database, anything else is treated as a directory for the
// file-backed store.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) persistence.Persistence {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		p, err := postgresql.NewPersistence(ctx, logger, databaseURL)
		if err != nil {
			panic(fmt.Errorf("failed to initialize postgres persistence: %w", err))
		}

		return p
	default:
		return file.NewPersistence(strings.TrimPrefix(databaseURL, "file://"))
	}
}
