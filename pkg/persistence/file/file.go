// Package file provides file-based persistence for automations, suitable for
// development and tests.
package file

import (
	"context"
	"os"
	"strings"

	"github.com/emeraldhq/pulse/pkg/persistence"
)

// Persistence implements the persistence.Persistence interface on the file
// system. Each automation and run is one JSON document under the root.
type Persistence struct {
	root           string
	automationRepo *AutomationRepository
	runRepo        *RunRepository
}

// NewPersistence creates file persistence rooted at the given directory. A
// file:// scheme prefix is accepted and stripped.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:           cleanRoot,
		automationRepo: NewAutomationRepository(cleanRoot),
		runRepo:        NewRunRepository(cleanRoot),
	}
}

func (fp *Persistence) AutomationRepository() persistence.AutomationRepository {
	return fp.automationRepo
}

func (fp *Persistence) RunRepository() persistence.RunRepository {
	return fp.runRepo
}

// HealthCheck verifies the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Close performs any necessary cleanup. For file persistence there is nothing
// to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}
