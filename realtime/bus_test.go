package realtime

import (
	"context"
	"testing"
	"time"

	bookingRepo "knead/database/repository/booking"
	"knead/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bookingEvent(bookingID, masseurID string, status models.BookingStatus) models.ChangeEvent {
	return models.ChangeEvent{
		Mutation: models.MutationUpdate,
		Booking: models.Booking{
			ID:        bookingID,
			MasseurID: masseurID,
			Status:    status,
		},
	}
}

func receive(t *testing.T, sub *Subscription) models.ChangeEvent {
	t.Helper()
	select {
	case ev, ok := <-sub.Events():
		require.True(t, ok, "subscription closed unexpectedly")
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for change event")
		return models.ChangeEvent{}
	}
}

func TestPublishFansOutByFilter(t *testing.T) {
	bus := NewBus()
	byBooking := bus.Subscribe(ForBooking("booking-1"))
	defer byBooking.Close()
	byMasseur := bus.Subscribe(ForMasseur("masseur-1"))
	defer byMasseur.Close()

	bus.Publish(bookingEvent("booking-1", "masseur-1", models.BookingConfirmed))
	bus.Publish(bookingEvent("booking-2", "masseur-1", models.BookingPending))
	bus.Publish(bookingEvent("booking-3", "masseur-2", models.BookingPending))

	ev := receive(t, byBooking)
	assert.Equal(t, "booking-1", ev.Booking.ID)
	select {
	case extra := <-byBooking.Events():
		t.Fatalf("unexpected event for booking filter: %+v", extra)
	default:
	}

	first := receive(t, byMasseur)
	second := receive(t, byMasseur)
	assert.Equal(t, "booking-1", first.Booking.ID)
	assert.Equal(t, "booking-2", second.Booking.ID)
}

func TestClosedSubscriptionStopsReceiving(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe(ForBooking("booking-1"))

	sub.Close()
	// Close is idempotent.
	sub.Close()

	bus.Publish(bookingEvent("booking-1", "masseur-1", models.BookingConfirmed))

	_, ok := <-sub.Events()
	assert.False(t, ok, "events channel should be closed")
}

func TestPublishDropsWhenSubscriberBufferFull(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe(ForBooking("booking-1"))
	defer sub.Close()

	// Overflow the subscriber buffer without draining it. Publish must not
	// block; overflow events are simply lost to the poll fallback.
	for i := 0; i < 200; i++ {
		bus.Publish(bookingEvent("booking-1", "masseur-1", models.BookingConfirmed))
	}

	drained := 0
	for {
		select {
		case <-sub.Events():
			drained++
		default:
			assert.Equal(t, 64, drained)
			return
		}
	}
}

func TestFeedLossDropsSubscribers(t *testing.T) {
	repo := bookingRepo.NewMemoryBookingRepo()
	bus := NewBus()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go bus.Run(ctx, repo)
	time.Sleep(50 * time.Millisecond)

	sub := bus.Subscribe(ForBooking("booking-1"))
	defer sub.Close()

	// Sever the store connection: the pump must close its subscribers so
	// they resubscribe rather than wait on a dead channel forever.
	repo.DropFeeds()

	select {
	case _, ok := <-sub.Events():
		assert.False(t, ok, "expected the subscription channel to close on feed loss")
	case <-time.After(time.Second):
		t.Fatal("subscription survived feed loss")
	}
}

func TestRunPumpsStoreFeedIntoBus(t *testing.T) {
	repo := bookingRepo.NewMemoryBookingRepo()
	bus := NewBus()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go bus.Run(ctx, repo)

	// Let Run open the feed before mutating.
	time.Sleep(50 * time.Millisecond)

	sub := bus.Subscribe(ForMasseur("masseur-1"))
	defer sub.Close()

	row, err := repo.Insert(&models.Booking{
		CustomerID:      "customer-1",
		MasseurID:       "masseur-1",
		MassageTypeID:   "deep-tissue",
		ScheduledTime:   time.Now().Add(time.Hour),
		DurationMinutes: 60,
		Status:          models.BookingPending,
	})
	require.NoError(t, err)

	ev := receive(t, sub)
	assert.Equal(t, models.MutationInsert, ev.Mutation)
	assert.Equal(t, row.ID, ev.Booking.ID)

	_, err = repo.UpdateStatus(row.ID, models.BookingConfirmed)
	require.NoError(t, err)

	ev = receive(t, sub)
	assert.Equal(t, models.MutationUpdate, ev.Mutation)
	assert.Equal(t, models.BookingConfirmed, ev.Booking.Status)
}
