package masseurRepo

import (
	"sync"
	"time"

	"knead/models"

	"github.com/google/uuid"
)

// MemoryMasseurRepo is the in-memory MasseurRepository used as an injected
// test double.
type MemoryMasseurRepo struct {
	mu   sync.Mutex
	apps map[string]models.MasseurApplication // keyed by masseur_id
}

// NewMemoryMasseurRepo creates an empty in-memory application store.
func NewMemoryMasseurRepo() *MemoryMasseurRepo {
	return &MemoryMasseurRepo{apps: make(map[string]models.MasseurApplication)}
}

func (r *MemoryMasseurRepo) CreateApplication(app *models.MasseurApplication) (*models.MasseurApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	app.ID = uuid.New().String()
	app.Status = models.ApplicationPending
	app.CreatedAt = now
	app.UpdatedAt = now

	r.apps[app.MasseurID] = *app
	return app, nil
}

func (r *MemoryMasseurRepo) GetCurrent(masseurID string) (*models.MasseurApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	app, ok := r.apps[masseurID]
	if !ok {
		return nil, nil
	}
	copied := app
	return &copied, nil
}

func (r *MemoryMasseurRepo) SetStatus(masseurID string, status models.ApplicationStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	app, ok := r.apps[masseurID]
	if !ok {
		return 0, nil
	}
	app.Status = status
	app.UpdatedAt = time.Now()
	r.apps[masseurID] = app
	return 1, nil
}

func (r *MemoryMasseurRepo) ListByStatus(status models.ApplicationStatus) ([]models.MasseurApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var apps []models.MasseurApplication
	for _, app := range r.apps {
		if app.Status == status {
			apps = append(apps, app)
		}
	}
	return apps, nil
}

func (r *MemoryMasseurRepo) ListDiscoverable() ([]models.MasseurApplication, error) {
	return r.ListByStatus(models.ApplicationApproved)
}
