package masseurRepo

import "knead/models"

// MasseurRepository manages masseur applications and the approved-only
// discovery query.
type MasseurRepository interface {
	// CreateApplication inserts a fresh pending application for the masseur,
	// superseding any previous (e.g. rejected) one.
	CreateApplication(app *models.MasseurApplication) (*models.MasseurApplication, error)

	// GetCurrent returns the masseur's current application, or nil if none exists.
	GetCurrent(masseurID string) (*models.MasseurApplication, error)

	// SetStatus overwrites the status of the masseur's current application and
	// returns the number of rows affected.
	SetStatus(masseurID string, status models.ApplicationStatus) (int64, error)

	// ListByStatus returns current applications with the given status.
	ListByStatus(status models.ApplicationStatus) ([]models.MasseurApplication, error)

	// ListDiscoverable returns applications visible to customers, i.e. those
	// with status approved. Approval is the sole discoverability gate.
	ListDiscoverable() ([]models.MasseurApplication, error)
}
