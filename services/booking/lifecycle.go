package booking

import (
	"time"

	bookingRepo "knead/database/repository/booking"
	catalogRepo "knead/database/repository/catalog"
	masseurRepo "knead/database/repository/masseur"
	"knead/models"
	"knead/services/auth"
	"knead/utils"

	"go.uber.org/zap"
)

// scheduledTimeLayout combines the separately chosen calendar date and time
// of day.
const scheduledTimeLayout = "2006-01-02 15:04"

// DefaultLifecycleService implements LifecycleService.
type DefaultLifecycleService struct {
	Repo        bookingRepo.BookingRepository
	MasseurRepo masseurRepo.MasseurRepository
	CatalogRepo catalogRepo.CatalogRepository
}

// Create builds the scheduled instant, checks references, and inserts the
// row as pending.
func (s *DefaultLifecycleService) Create(req CreateRequest) (*models.Booking, error) {
	scheduled, err := time.ParseInLocation(scheduledTimeLayout, req.CalendarDate+" "+req.TimeOfDay, time.Local)
	if err != nil {
		return nil, &ValidationError{
			Field:  "scheduledTime",
			Reason: "could not combine calendar date and time of day into an instant",
		}
	}
	if req.DurationMinutes <= 0 {
		return nil, &ValidationError{Field: "durationMinutes", Reason: "must be positive"}
	}
	if req.CustomerID == "" {
		return nil, &ValidationError{Field: "customerId", Reason: "required"}
	}

	app, err := s.MasseurRepo.GetCurrent(req.MasseurID)
	if err != nil {
		return nil, &TransientIOError{Op: "masseur lookup", Err: err}
	}
	if app == nil || !app.Discoverable() {
		return nil, &ReferenceError{Kind: "masseur", ID: req.MasseurID}
	}

	mt, err := s.CatalogRepo.GetByID(req.MassageTypeID)
	if err != nil {
		return nil, &TransientIOError{Op: "massage type lookup", Err: err}
	}
	if mt == nil {
		return nil, &ReferenceError{Kind: "massage type", ID: req.MassageTypeID}
	}

	row := &models.Booking{
		CustomerID:      req.CustomerID,
		MasseurID:       req.MasseurID,
		MassageTypeID:   req.MassageTypeID,
		ScheduledTime:   scheduled,
		DurationMinutes: req.DurationMinutes,
		Status:          models.BookingPending,
	}
	persisted, err := s.Repo.Insert(row)
	if err != nil {
		return nil, &TransientIOError{Op: "booking insert", Err: err}
	}

	utils.GetLogger().Info("booking created",
		zap.String("bookingId", persisted.ID),
		zap.String("masseurId", persisted.MasseurID),
		zap.Time("scheduledTime", persisted.ScheduledTime))
	return persisted, nil
}

// Transition applies a client-requested status edge. Only the assigned
// masseur may move a pending booking to confirmed or declined; the write is
// unconditional, so two racing calls are settled last-write-wins by the
// store and the loser sees either this error or a harmless no-op.
func (s *DefaultLifecycleService) Transition(bookingID string, actor *auth.Context, newStatus models.BookingStatus) (*models.Booking, error) {
	row, err := s.Repo.GetByID(bookingID)
	if err != nil {
		return nil, &TransientIOError{Op: "booking lookup", Err: err}
	}
	if row == nil {
		return nil, &ReferenceError{Kind: "booking", ID: bookingID}
	}

	if newStatus != models.BookingConfirmed && newStatus != models.BookingDeclined {
		return nil, &InvalidTransitionError{
			BookingID: bookingID, From: row.Status, To: newStatus,
			Reason: "edge not in the allowed set",
		}
	}
	if !actor.IsProvider() {
		return nil, &InvalidTransitionError{
			BookingID: bookingID, From: row.Status, To: newStatus,
			Reason: "requesting role is not provider",
		}
	}
	if actor.UserID != row.MasseurID {
		return nil, &InvalidTransitionError{
			BookingID: bookingID, From: row.Status, To: newStatus,
			Reason: "requesting identity is not the assigned masseur",
		}
	}
	if row.Status != models.BookingPending {
		return nil, &InvalidTransitionError{
			BookingID: bookingID, From: row.Status, To: newStatus,
			Reason: "booking is already terminal",
		}
	}

	if _, err := s.Repo.UpdateStatus(bookingID, newStatus); err != nil {
		return nil, &TransientIOError{Op: "status update", Err: err}
	}

	row.Status = newStatus
	utils.GetLogger().Info("booking transitioned",
		zap.String("bookingId", bookingID),
		zap.String("status", string(newStatus)),
		zap.String("actorId", actor.UserID))
	return row, nil
}
