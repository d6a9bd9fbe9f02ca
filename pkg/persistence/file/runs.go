package file

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path"
	"sort"
	"time"

	"github.com/emeraldhq/pulse/pkg/models"
)

// RunRepository stores one JSON document per automation run under
// <root>/runs/<organization>/<id>.json.
type RunRepository struct {
	root string
}

func NewRunRepository(root string) *RunRepository {
	return &RunRepository{root: root}
}

func (r *RunRepository) orgDir(organizationID string) string {
	return path.Join(r.root, "runs", organizationID)
}

func (r *RunRepository) SaveRun(_ context.Context, run *models.AutomationRun) error {
	dir := r.orgDir(run.OrganizationID)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return err
	}

	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path.Join(dir, run.ID+".json"), data, 0o600)
}

// ListRuns returns the organization's runs, most recent first.
func (r *RunRepository) ListRuns(_ context.Context, organizationID string, limit int) ([]*models.AutomationRun, error) {
	dir := r.orgDir(organizationID)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return make([]*models.AutomationRun, 0), nil
	}

	jsonFiles, err := fs.Glob(os.DirFS(dir), "*.json")
	if err != nil {
		return nil, err
	}

	runs := make([]*models.AutomationRun, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		data, err := os.ReadFile(path.Join(dir, file))
		if err != nil {
			return nil, err
		}

		var run models.AutomationRun
		if err := json.Unmarshal(data, &run); err != nil {
			return nil, err
		}

		runs = append(runs, &run)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})

	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}

	return runs, nil
}

// PruneRunsBefore removes runs finished before the cutoff across all
// organizations.
func (r *RunRepository) PruneRunsBefore(_ context.Context, cutoff time.Time) (int64, error) {
	runsRoot := path.Join(r.root, "runs")
	if _, err := os.Stat(runsRoot); os.IsNotExist(err) {
		return 0, nil
	}

	var pruned int64

	err := fs.WalkDir(os.DirFS(runsRoot), ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || path.Ext(p) != ".json" {
			return err
		}

		full := path.Join(runsRoot, p)

		data, err := os.ReadFile(full)
		if err != nil {
			return err
		}

		var run models.AutomationRun
		if err := json.Unmarshal(data, &run); err != nil {
			return nil // skip unreadable entries
		}

		if run.FinishedAt.Before(cutoff) {
			if err := os.Remove(full); err != nil {
				return err
			}

			pruned++
		}

		return nil
	})

	return pruned, err
}
