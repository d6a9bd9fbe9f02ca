package postgresql_test

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/emeraldhq/pulse/pkg/models"
	"github.com/emeraldhq/pulse/pkg/persistence"
	"github.com/emeraldhq/pulse/pkg/persistence/postgresql"
)

var postgresContainer *postgres.PostgresContainer

func dropDb(ctx context.Context, t *testing.T, databaseURL string) {
	t.Helper()

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	for _, table := range []string{"automation_runs", "automations", "schema_migrations"} {
		_, err = db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE")
		require.NoError(t, err)
	}

	require.NoError(t, db.Close())
}

func setupTestDB(t *testing.T) (*postgresql.Persistence, context.Context, string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)

	if postgresContainer == nil || !postgresContainer.IsRunning() {
		var err error

		postgresContainer, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("pulse_test"),
			postgres.WithUsername("pulse"),
			postgres.WithPassword("pulse"),
			postgres.BasicWaitStrategies(),
		)
		require.NoError(t, err)
	}

	databaseURL, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	dropDb(ctx, t, databaseURL)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	p, err := postgresql.NewPersistence(ctx, logger, databaseURL)
	require.NoError(t, err)

	t.Cleanup(func() {
		dropDb(ctx, t, databaseURL)
		require.NoError(t, p.Close(ctx))
		cancel()
	})

	return p, ctx, databaseURL
}

func testAutomation(organizationID string, trigger models.Trigger) *models.Automation {
	now := time.Now().UTC().Truncate(time.Microsecond)

	return &models.Automation{
		ID:             uuid.New().String(),
		OrganizationID: organizationID,
		Name:           "Welcome new leads",
		Trigger:        trigger,
		Actions: []models.ActionItem{
			{Kind: models.ActionSendEmail, Configuration: map[string]any{"subject": "Welcome"}},
		},
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestNewPersistence_Migrations(t *testing.T) {
	_, ctx, databaseURL := setupTestDB(t)

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	defer func() {
		require.NoError(t, db.Close())
	}()

	for _, table := range []string{"automations", "automation_runs", "schema_migrations"} {
		var exists bool

		err = db.QueryRowContext(ctx, `SELECT EXISTS (SELECT FROM
information_schema.tables WHERE table_name = $1)`, table).Scan(&exists)
		require.NoError(t, err)
		assert.True(t, exists, table+" table should exist")
	}
}

func TestNewPersistence_HealthCheck(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	assert.NoError(t, p.HealthCheck(ctx))
}

func TestAutomationRepository_SaveAndFindActive(t *testing.T) {
	p, ctx, _ := setupTestDB(t)
	repo := p.AutomationRepository()

	older := testAutomation("org-1", models.TriggerNewLead)
	older.CreatedAt = older.CreatedAt.Add(-time.Hour)

	newer := testAutomation("org-1", models.TriggerNewLead)

	inactive := testAutomation("org-1", models.TriggerNewLead)
	inactive.IsActive = false

	otherTrigger := testAutomation("org-1", models.TriggerNewBooking)
	otherOrg := testAutomation("org-2", models.TriggerNewLead)

	for _, a := range []*models.Automation{older, newer, inactive, otherTrigger, otherOrg} {
		require.NoError(t, repo.Save(ctx, a))
	}

	matched, err := repo.FindActive(ctx, "org-1", models.TriggerNewLead)

	require.NoError(t, err)
	require.Len(t, matched, 2)
	assert.Equal(t, older.ID, matched[0].ID)
	assert.Equal(t, newer.ID, matched[1].ID)

	// Configuration survives the round trip.
	assert.Equal(t, "Welcome", matched[0].Actions[0].Configuration["subject"])
}

func TestAutomationRepository_SoftDelete(t *testing.T) {
	p, ctx, _ := setupTestDB(t)
	repo := p.AutomationRepository()

	automation := testAutomation("org-1", models.TriggerNewLead)
	require.NoError(t, repo.Save(ctx, automation))

	require.NoError(t, repo.Delete(ctx, "org-1", automation.ID))

	_, err := repo.GetByID(ctx, "org-1", automation.ID)
	assert.ErrorIs(t, err, persistence.ErrAutomationNotFound)

	count, err := repo.Count(ctx, "org-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	err = repo.Delete(ctx, "org-1", automation.ID)
	assert.ErrorIs(t, err, persistence.ErrAutomationNotFound)
}

func TestAutomationRepository_CrossTenantIsolation(t *testing.T) {
	p, ctx, _ := setupTestDB(t)
	repo := p.AutomationRepository()

	automation := testAutomation("org-1", models.TriggerNewLead)
	require.NoError(t, repo.Save(ctx, automation))

	_, err := repo.GetByID(ctx, "org-2", automation.ID)
	assert.ErrorIs(t, err, persistence.ErrAutomationNotFound)

	err = repo.Delete(ctx, "org-2", automation.ID)
	assert.ErrorIs(t, err, persistence.ErrAutomationNotFound)
}

func TestAutomationRepository_Upsert(t *testing.T) {
	p, ctx, _ := setupTestDB(t)
	repo := p.AutomationRepository()

	automation := testAutomation("org-1", models.TriggerNewLead)
	require.NoError(t, repo.Save(ctx, automation))

	automation.Name = "Renamed automation"
	automation.IsActive = false
	require.NoError(t, repo.Save(ctx, automation))

	loaded, err := repo.GetByID(ctx, "org-1", automation.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed automation", loaded.Name)
	assert.False(t, loaded.IsActive)

	count, err := repo.Count(ctx, "org-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRunRepository_SaveListAndPrune(t *testing.T) {
	p, ctx, _ := setupTestDB(t)
	repo := p.RunRepository()

	base := time.Now().UTC().Truncate(time.Microsecond)

	oldRun := &models.AutomationRun{
		ID:             "run-" + uuid.New().String(),
		AutomationID:   uuid.New().String(),
		OrganizationID: "org-1",
		Trigger:        models.TriggerNewLead,
		Status:         models.RunStatusSucceeded,
		Results: []models.ActionResult{
			{Kind: models.ActionSendEmail, Status: models.ActionStatusSucceeded, DurationMs: 120},
		},
		StartedAt:  base.AddDate(0, 0, -60),
		FinishedAt: base.AddDate(0, 0, -60).Add(time.Second),
	}
	newRun := &models.AutomationRun{
		ID:             "run-" + uuid.New().String(),
		AutomationID:   uuid.New().String(),
		OrganizationID: "org-1",
		Trigger:        models.TriggerNewBooking,
		Status:         models.RunStatusPartial,
		Results: []models.ActionResult{
			{Kind: models.ActionSendEmail, Status: models.ActionStatusFailed, Error: "boom"},
			{Kind: models.ActionSendWhatsApp, Status: models.ActionStatusSucceeded},
		},
		StartedAt:  base,
		FinishedAt: base.Add(time.Second),
	}

	require.NoError(t, repo.SaveRun(ctx, oldRun))
	require.NoError(t, repo.SaveRun(ctx, newRun))

	runs, err := repo.ListRuns(ctx, "org-1", 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// Most recent first, with results intact.
	assert.Equal(t, newRun.ID, runs[0].ID)
	require.Len(t, runs[0].Results, 2)
	assert.Equal(t, models.ActionStatusFailed, runs[0].Results[0].Status)

	pruned, err := repo.PruneRunsBefore(ctx, base.AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Equal(t, int64(1), pruned)

	runs, err = repo.ListRuns(ctx, "org-1", 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, newRun.ID, runs[0].ID)
}
