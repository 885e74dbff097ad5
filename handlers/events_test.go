package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	bookingRepo "knead/database/repository/booking"
	"knead/models"
	"knead/realtime"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamBookingPushesMutations(t *testing.T) {
	gin.SetMode(gin.TestMode)

	repo := bookingRepo.NewMemoryBookingRepo()
	bus := realtime.NewBus()

	pumpCtx, stopPump := context.WithCancel(context.Background())
	defer stopPump()
	go bus.Run(pumpCtx, repo)
	time.Sleep(50 * time.Millisecond)

	row, err := repo.Insert(&models.Booking{
		CustomerID:      "customer-1",
		MasseurID:       "masseur-1",
		MassageTypeID:   "deep-tissue",
		ScheduledTime:   time.Now().Add(time.Hour),
		DurationMinutes: 60,
		Status:          models.BookingPending,
	})
	require.NoError(t, err)

	h := NewEventsHandler(bus, repo, realtime.PushOnly())
	router := gin.New()
	router.GET("/bookings/:id/events", h.StreamBooking)

	reqCtx, disconnect := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/bookings/"+row.ID+"/events", nil).WithContext(reqCtx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		router.ServeHTTP(rec, req)
		close(done)
	}()

	// Let the handler subscribe, then mutate the row.
	time.Sleep(50 * time.Millisecond)
	_, err = repo.UpdateStatus(row.ID, models.BookingConfirmed)
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)
	disconnect()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stream did not terminate on client disconnect")
	}

	body := rec.Body.String()
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Contains(t, body, `"pending"`, "snapshot on connect")
	assert.Contains(t, body, `"confirmed"`, "pushed mutation")
}

func TestStreamBookingUnknownID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := NewEventsHandler(realtime.NewBus(), bookingRepo.NewMemoryBookingRepo(), realtime.PushOnly())
	router := gin.New()
	router.GET("/bookings/:id/events", h.StreamBooking)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bookings/no-such-id/events", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStreamBookingEndsWhenFeedDrops(t *testing.T) {
	gin.SetMode(gin.TestMode)

	repo := bookingRepo.NewMemoryBookingRepo()
	bus := realtime.NewBus()

	pumpCtx, stopPump := context.WithCancel(context.Background())
	defer stopPump()
	go bus.Run(pumpCtx, repo)
	time.Sleep(50 * time.Millisecond)

	row, err := repo.Insert(&models.Booking{
		CustomerID:      "customer-1",
		MasseurID:       "masseur-1",
		MassageTypeID:   "deep-tissue",
		ScheduledTime:   time.Now().Add(time.Hour),
		DurationMinutes: 60,
		Status:          models.BookingPending,
	})
	require.NoError(t, err)

	h := NewEventsHandler(bus, repo, realtime.PushOnly())
	router := gin.New()
	router.GET("/bookings/:id/events", h.StreamBooking)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/bookings/"+row.ID+"/events", nil)

	done := make(chan struct{})
	go func() {
		router.ServeHTTP(rec, req)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	repo.DropFeeds()

	// The dropped feed closes the subscription; the handler ends the stream
	// so the client reconnects instead of hanging on a dead channel.
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stream did not end after feed loss")
	}
}
