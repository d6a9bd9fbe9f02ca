package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/emeraldhq/pulse/pkg/models"
)

// RunRepository handles automation run records.
type RunRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewRunRepository(db *sql.DB, logger *slog.Logger) *RunRepository {
	return &RunRepository{db: db, logger: logger}
}

func (r *RunRepository) SaveRun(ctx context.Context, run *models.AutomationRun) error {
	results, err := json.Marshal(run.Results)
	if err != nil {
		return fmt.Errorf("failed to encode run results: %w", err)
	}

	query := `
		INSERT INTO automation_runs (id, automation_id, organization_id, trigger, status, results, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = r.db.ExecContext(ctx, query,
		run.ID,
		run.AutomationID,
		run.OrganizationID,
		string(run.Trigger),
		string(run.Status),
		results,
		run.StartedAt,
		run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save automation run %s: %w", run.ID, err)
	}

	return nil
}

// ListRuns returns the organization's runs, most recent first.
func (r *RunRepository) ListRuns(ctx context.Context, organizationID string, limit int) ([]*models.AutomationRun, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT
			id
		  , automation_id
		  , organization_id
		  , trigger
		  , status
		  , results
		  , started_at
		  , finished_at
		FROM automation_runs
		WHERE organization_id = $1
		ORDER BY started_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, organizationID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query automation runs: %w", err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	runs := make([]*models.AutomationRun, 0)

	for rows.Next() {
		var (
			run     models.AutomationRun
			trigger string
			status  string
			results []byte
		)

		err := rows.Scan(
			&run.ID,
			&run.AutomationID,
			&run.OrganizationID,
			&trigger,
			&status,
			&results,
			&run.StartedAt,
			&run.FinishedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan automation run: %w", err)
		}

		run.Trigger = models.Trigger(trigger)
		run.Status = models.RunStatus(status)

		if err := json.Unmarshal(results, &run.Results); err != nil {
			return nil, fmt.Errorf("failed to decode run results: %w", err)
		}

		runs = append(runs, &run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating automation runs: %w", err)
	}

	return runs, nil
}

// PruneRunsBefore removes runs finished before the cutoff.
func (r *RunRepository) PruneRunsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM automation_runs WHERE finished_at < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune automation runs: %w", err)
	}

	pruned, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned automation runs: %w", err)
	}

	return pruned, nil
}
