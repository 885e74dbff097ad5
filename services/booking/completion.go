package booking

import (
	"time"

	bookingRepo "knead/database/repository/booking"
	"knead/models"
	"knead/utils"

	"go.uber.org/zap"
)

// CompletionSweeper closes the tail of the lifecycle: confirmed
// bookings whose scheduled end has passed by more than the grace period are
// marked completed. This is a system edge run by the background worker;
// clients can never request it, and no cancellation path exists.
type CompletionSweeper struct {
	Repo  bookingRepo.BookingRepository
	Grace time.Duration

	// Now is swappable for tests; defaults to time.Now.
	Now func() time.Time
}

// Sweep marks overdue confirmed bookings completed and returns how many rows
// it moved.
func (s *CompletionSweeper) Sweep() (int, error) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	cutoff := now().Add(-s.Grace)

	overdue, err := s.Repo.OverdueConfirmed(cutoff)
	if err != nil {
		return 0, &TransientIOError{Op: "overdue query", Err: err}
	}

	logger := utils.GetLogger()
	completed := 0
	for _, row := range overdue {
		affected, err := s.Repo.UpdateStatus(row.ID, models.BookingCompleted)
		if err != nil {
			logger.Warn("completion sweep failed to update booking",
				zap.String("bookingId", row.ID), zap.Error(err))
			continue
		}
		if affected > 0 {
			completed++
		}
	}

	if completed > 0 {
		logger.Info("completion sweep finished", zap.Int("completed", completed))
	}
	return completed, nil
}
