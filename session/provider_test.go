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

type providerFixture struct {
	repo *bookingRepo.MemoryBookingRepo
	bus  *realtime.Bus
	now  time.Time
}

func newProviderFixture(t *testing.T) *providerFixture {
	t.Helper()

	repo := bookingRepo.NewMemoryBookingRepo()
	bus := realtime.NewBus()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go bus.Run(ctx, repo)
	time.Sleep(50 * time.Millisecond)

	return &providerFixture{
		repo: repo,
		bus:  bus,
		now:  time.Date(2024, 6, 2, 12, 0, 0, 0, time.Local),
	}
}

func (f *providerFixture) seed(t *testing.T, masseurID string, status models.BookingStatus, offset time.Duration) *models.Booking {
	t.Helper()
	row, err := f.repo.Insert(&models.Booking{
		CustomerID:      "customer-1",
		MasseurID:       masseurID,
		MassageTypeID:   "deep-tissue",
		ScheduledTime:   f.now.Add(offset),
		DurationMinutes: 60,
		Status:          models.BookingPending,
	})
	require.NoError(t, err)
	if status != models.BookingPending {
		_, err = f.repo.UpdateStatus(row.ID, status)
		require.NoError(t, err)
	}
	return row
}

func (f *providerFixture) start(t *testing.T, masseurID string, policy realtime.ReconciliationPolicy) *ProviderSession {
	t.Helper()
	s := NewProviderSession(masseurID, f.bus, f.repo, policy)
	s.now = func() time.Time { return f.now }
	s.Start(context.Background())
	t.Cleanup(s.Close)
	time.Sleep(50 * time.Millisecond)
	return s
}

func TestWorkingSetHoldsUpcomingRelevantBookingsSoonestFirst(t *testing.T) {
	f := newProviderFixture(t)

	later := f.seed(t, "masseur-1", models.BookingConfirmed, 4*time.Hour)
	sooner := f.seed(t, "masseur-1", models.BookingPending, time.Hour)
	f.seed(t, "masseur-1", models.BookingDeclined, 2*time.Hour)
	f.seed(t, "masseur-1", models.BookingConfirmed, -time.Hour)
	f.seed(t, "masseur-2", models.BookingPending, time.Hour)

	s := f.start(t, "masseur-1", realtime.PushOnly())

	set := s.WorkingSet()
	require.Len(t, set, 2)
	assert.Equal(t, sooner.ID, set[0].ID)
	assert.Equal(t, later.ID, set[1].ID)
}

func TestWorkingSetDropsDeclinedBookingOnPush(t *testing.T) {
	f := newProviderFixture(t)
	row := f.seed(t, "masseur-1", models.BookingPending, time.Hour)
	keep := f.seed(t, "masseur-1", models.BookingConfirmed, 2*time.Hour)

	s := f.start(t, "masseur-1", realtime.PushOnly())
	require.Len(t, s.WorkingSet(), 2)

	_, err := f.repo.UpdateStatus(row.ID, models.BookingDeclined)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		set := s.WorkingSet()
		return len(set) == 1 && set[0].ID == keep.ID
	}, time.Second, 10*time.Millisecond)
}

func TestWorkingSetPicksUpNewAssignmentOnPush(t *testing.T) {
	f := newProviderFixture(t)
	s := f.start(t, "masseur-1", realtime.PushOnly())
	assert.Empty(t, s.WorkingSet())

	row := f.seed(t, "masseur-1", models.BookingPending, time.Hour)

	assert.Eventually(t, func() bool {
		set := s.WorkingSet()
		return len(set) == 1 && set[0].ID == row.ID
	}, time.Second, 10*time.Millisecond)
}

func TestDirectRefreshAfterOwnTransition(t *testing.T) {
	f := newProviderFixture(t)
	row := f.seed(t, "masseur-1", models.BookingPending, time.Hour)

	s := f.start(t, "masseur-1", realtime.PushOnly())
	require.Len(t, s.WorkingSet(), 1)

	// The masseur declines from their own device while the push channel is
	// down; the handler path calls Refresh directly, so the actor's own view
	// updates without waiting for an event.
	f.repo.MuteEvents(true)
	defer f.repo.MuteEvents(false)
	_, err := f.repo.UpdateStatus(row.ID, models.BookingDeclined)
	require.NoError(t, err)

	s.Refresh()
	assert.Empty(t, s.WorkingSet())
}

func TestPollFallbackRefreshesWorkingSet(t *testing.T) {
	f := newProviderFixture(t)
	row := f.seed(t, "masseur-1", models.BookingPending, time.Hour)

	s := f.start(t, "masseur-1", realtime.ReconciliationPolicy{
		PollInterval:     20 * time.Millisecond,
		ResubscribeDelay: time.Second,
	})
	require.Len(t, s.WorkingSet(), 1)

	f.repo.MuteEvents(true)
	defer f.repo.MuteEvents(false)
	_, err := f.repo.UpdateStatus(row.ID, models.BookingDeclined)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return len(s.WorkingSet()) == 0
	}, time.Second, 10*time.Millisecond)
}
