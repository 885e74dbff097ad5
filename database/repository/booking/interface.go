package bookingRepo

import (
	"context"
	"time"

	"knead/models"
)

// BookingRepository is the booking store abstraction. The store owns the
// single authoritative row per booking id; updates are unconditional
// last-write-wins writes, and every mutation is observable through Watch.
type BookingRepository interface {
	// Insert persists a new booking, assigning its id, and returns the
	// persisted row.
	Insert(booking *models.Booking) (*models.Booking, error)

	// UpdateStatus overwrites the status of the given booking and returns the
	// number of rows affected. No compare-and-swap: if two writers race, the
	// last write wins.
	UpdateStatus(id string, status models.BookingStatus) (int64, error)

	// GetByID retrieves a booking by its unique id.
	GetByID(id string) (*models.Booking, error)

	// WorkingSet returns the actionable bookings for a masseur: status in
	// {pending, confirmed} with scheduled_time >= now, ordered by
	// scheduled_time ascending.
	WorkingSet(masseurID string, now time.Time) ([]models.Booking, error)

	// OverdueConfirmed returns confirmed bookings whose scheduled end lies
	// before the given cutoff. Used by the completion sweep.
	OverdueConfirmed(cutoff time.Time) ([]models.Booking, error)

	// Watch opens the store's row-mutation change feed. The returned channel
	// is closed when the feed drops or ctx is cancelled; reopening it is the
	// caller's responsibility.
	Watch(ctx context.Context) (<-chan models.ChangeEvent, error)
}
