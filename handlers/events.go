package handlers

import (
	"net/http"
	"time"

	bookingRepo "knead/database/repository/booking"
	"knead/models"
	"knead/realtime"
	"knead/utils"

	"github.com/gin-gonic/gin"
)

// EventsHandler streams booking mutations to clients over server-sent
// events. This is the push half of the reconciliation contract; the
// server-side poll fallback re-reads the store on the policy interval so a
// connected client's staleness stays bounded even when a push is missed.
type EventsHandler struct {
	Bus    *realtime.Bus
	Repo   bookingRepo.BookingRepository
	Policy realtime.ReconciliationPolicy
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(bus *realtime.Bus, repo bookingRepo.BookingRepository, policy realtime.ReconciliationPolicy) *EventsHandler {
	return &EventsHandler{Bus: bus, Repo: repo, Policy: policy}
}

// StreamBooking sends the current row on connect, then one event per
// observed mutation. When the upstream feed drops, the subscription closes
// and the stream ends; the client reconnects, which is its resubscription.
func (h *EventsHandler) StreamBooking(c *gin.Context) {
	row, err := h.Repo.GetByID(c.Param("id"))
	if err != nil {
		utils.JSONError(c, http.StatusServiceUnavailable, "Temporarily unavailable", err.Error())
		return
	}
	if row == nil {
		utils.JSONError(c, http.StatusNotFound, "Booking not found", "")
		return
	}

	sub := h.Bus.Subscribe(realtime.ForBooking(row.ID))
	defer sub.Close()

	var pollCh <-chan time.Time
	if h.Policy.PollInterval > 0 {
		ticker := time.NewTicker(h.Policy.PollInterval)
		defer ticker.Stop()
		pollCh = ticker.C
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")

	send := func(b models.Booking) {
		c.SSEvent("booking", b)
		c.Writer.Flush()
	}
	send(*row)

	for {
		select {
		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			send(ev.Booking)
		case <-pollCh:
			fresh, err := h.Repo.GetByID(row.ID)
			if err == nil && fresh != nil {
				send(*fresh)
			}
		case <-c.Request.Context().Done():
			return
		}
	}
}
