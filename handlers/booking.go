package handlers

import (
	"net/http"
	"time"

	bookingRepo "knead/database/repository/booking"
	"knead/middleware"
	"knead/models"
	"knead/services/booking"
	"knead/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler exposes the booking lifecycle over HTTP.
type BookingHandler struct {
	Lifecycle booking.LifecycleService
	Repo      bookingRepo.BookingRepository
	Logger    *zap.Logger
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(lifecycle booking.LifecycleService, repo bookingRepo.BookingRepository, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Lifecycle: lifecycle, Repo: repo, Logger: logger}
}

// CreateBooking creates a reservation for the signed-in customer.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req booking.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	authCtx := middleware.GetAuthContext(c)
	req.CustomerID = authCtx.UserID

	created, err := h.Lifecycle.Create(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ConfirmBooking moves a pending booking to confirmed on behalf of its masseur.
func (h *BookingHandler) ConfirmBooking(c *gin.Context) {
	h.transition(c, models.BookingConfirmed)
}

// DeclineBooking moves a pending booking to declined on behalf of its masseur.
func (h *BookingHandler) DeclineBooking(c *gin.Context) {
	h.transition(c, models.BookingDeclined)
}

func (h *BookingHandler) transition(c *gin.Context, status models.BookingStatus) {
	bookingID := c.Param("id")
	authCtx := middleware.GetAuthContext(c)

	updated, err := h.Lifecycle.Transition(bookingID, authCtx, status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// GetBooking returns one booking; this is also the customer's manual
// refresh path.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	row, err := h.Repo.GetByID(c.Param("id"))
	if err != nil {
		utils.JSONError(c, http.StatusServiceUnavailable, "Temporarily unavailable", err.Error())
		return
	}
	if row == nil {
		utils.JSONError(c, http.StatusNotFound, "Booking not found", "")
		return
	}
	c.JSON(http.StatusOK, row)
}

// WorkingSet returns the signed-in masseur's actionable bookings, soonest
// first.
func (h *BookingHandler) WorkingSet(c *gin.Context) {
	authCtx := middleware.GetAuthContext(c)

	set, err := h.Repo.WorkingSet(authCtx.UserID, time.Now())
	if err != nil {
		utils.JSONError(c, http.StatusServiceUnavailable, "Temporarily unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": set})
}
