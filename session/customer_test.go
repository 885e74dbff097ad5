package session

import (
	"context"
	"testing"
	"time"

	bookingRepo "knead/database/repository/booking"
	"knead/models"
	"knead/realtime"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type customerFixture struct {
	repo *bookingRepo.MemoryBookingRepo
	bus  *realtime.Bus
	row  *models.Booking
}

// newCustomerFixture wires a store, a running bus pump, and one pending
// booking for customer-1.
func newCustomerFixture(t *testing.T) *customerFixture {
	t.Helper()

	repo := bookingRepo.NewMemoryBookingRepo()
	bus := realtime.NewBus()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go bus.Run(ctx, repo)
	// Let the pump open the change feed before anything mutates.
	time.Sleep(50 * time.Millisecond)

	row, err := repo.Insert(&models.Booking{
		CustomerID:      "customer-1",
		MasseurID:       "masseur-1",
		MassageTypeID:   "deep-tissue",
		ScheduledTime:   time.Now().Add(2 * time.Hour),
		DurationMinutes: 60,
		Status:          models.BookingPending,
	})
	require.NoError(t, err)

	return &customerFixture{repo: repo, bus: bus, row: row}
}

func (f *customerFixture) follow(t *testing.T, policy realtime.ReconciliationPolicy) *CustomerSession {
	t.Helper()
	s := NewCustomerSession(f.bus, f.repo, policy)
	s.Follow(context.Background(), *f.row)
	t.Cleanup(s.Close)
	// Give the run loop time to subscribe before the test mutates the row.
	time.Sleep(50 * time.Millisecond)
	return s
}

func TestCustomerSessionObservesConfirmationOnce(t *testing.T) {
	f := newCustomerFixture(t)
	s := f.follow(t, realtime.PushOnly())

	_, err := f.repo.UpdateStatus(f.row.ID, models.BookingConfirmed)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return s.View().Status == models.BookingConfirmed
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, s.StateChanges())

	// Redelivering the same row is a wholesale overwrite with identical
	// content: no observable change.
	confirmed, err := f.repo.GetByID(f.row.ID)
	require.NoError(t, err)
	f.bus.Publish(models.ChangeEvent{Mutation: models.MutationUpdate, Booking: *confirmed})

	assert.Never(t, func() bool {
		return s.StateChanges() != 1
	}, 200*time.Millisecond, 20*time.Millisecond)
	assert.Equal(t, models.BookingConfirmed, s.View().Status)
}

func TestPushOnlySessionStaysStaleAfterMissedEvent(t *testing.T) {
	f := newCustomerFixture(t)
	s := f.follow(t, realtime.PushOnly())

	// The push connection drops exactly while the masseur confirms.
	f.repo.MuteEvents(true)
	_, err := f.repo.UpdateStatus(f.row.ID, models.BookingConfirmed)
	require.NoError(t, err)
	f.repo.MuteEvents(false)

	// Without a poll fallback the view diverges from the store indefinitely.
	assert.Never(t, func() bool {
		return s.View().Status == models.BookingConfirmed
	}, 300*time.Millisecond, 20*time.Millisecond)

	// A manual refresh re-reads the store and converges.
	s.RefreshNow()
	assert.Equal(t, models.BookingConfirmed, s.View().Status)
	assert.Equal(t, 1, s.StateChanges())
}

func TestSessionResubscribesAfterFeedLoss(t *testing.T) {
	f := newCustomerFixture(t)
	s := f.follow(t, realtime.ReconciliationPolicy{ResubscribeDelay: 20 * time.Millisecond})

	// The store connection fails outright and a write lands while no feed
	// is open. The bus drops its subscribers; the session must resubscribe
	// and refresh once, converging on the write it could not have seen.
	f.repo.DropFeeds()
	_, err := f.repo.UpdateStatus(f.row.ID, models.BookingConfirmed)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return s.View().Status == models.BookingConfirmed
	}, 2*time.Second, 20*time.Millisecond)
}

func TestPollFallbackBoundsStaleness(t *testing.T) {
	f := newCustomerFixture(t)
	s := f.follow(t, realtime.ReconciliationPolicy{
		PollInterval:     20 * time.Millisecond,
		ResubscribeDelay: time.Second,
	})

	// Same missed push as above, but the poll ticker closes the gap on its
	// own.
	f.repo.MuteEvents(true)
	_, err := f.repo.UpdateStatus(f.row.ID, models.BookingConfirmed)
	require.NoError(t, err)
	f.repo.MuteEvents(false)

	assert.Eventually(t, func() bool {
		return s.View().Status == models.BookingConfirmed
	}, time.Second, 10*time.Millisecond)
}
