package booking

import (
	"knead/models"
	"knead/services/auth"
)

// CreateRequest carries the inputs for a new reservation. The calendar date
// and time of day are chosen separately by the customer and combined into
// one instant at creation; there is no reschedule operation.
type CreateRequest struct {
	CustomerID      string `json:"customerId"`
	MasseurID       string `json:"masseurId"`
	MassageTypeID   string `json:"massageTypeId"`
	CalendarDate    string `json:"calendarDate"` // "2006-01-02"
	TimeOfDay       string `json:"timeOfDay"`    // "15:04"
	DurationMinutes int    `json:"durationMinutes"`
}

// LifecycleService validates and applies booking status transitions against
// the store. It performs no optimistic locking: racing transitions are
// settled by the store's last-write-wins semantics.
type LifecycleService interface {
	// Create validates the request, combines date and time of day into the
	// scheduled instant, and inserts the row with status pending. The insert
	// is observable through the notification bus.
	Create(req CreateRequest) (*models.Booking, error)

	// Transition applies pending -> confirmed or pending -> declined on
	// behalf of the booking's assigned masseur. Everything else fails with
	// InvalidTransitionError and leaves the row unchanged.
	Transition(bookingID string, actor *auth.Context, newStatus models.BookingStatus) (*models.Booking, error)
}
