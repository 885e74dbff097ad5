package handlers

import (
	"errors"
	"net/http"

	"knead/services/approval"
	"knead/services/booking"
	"knead/utils"

	"github.com/gin-gonic/gin"
)

// respondError maps the service error taxonomy onto HTTP statuses.
// Validation, reference, and transition errors surface immediately at the
// point of action; transient I/O failures return 503 and clients fall back
// to their stale-but-eventually-correct views.
func respondError(c *gin.Context, err error) {
	var validationErr *booking.ValidationError
	var referenceErr *booking.ReferenceError
	var transitionErr *booking.InvalidTransitionError
	var transientErr *booking.TransientIOError
	var gapErr *approval.ConsistencyGapError

	switch {
	case errors.As(err, &validationErr):
		utils.JSONError(c, http.StatusUnprocessableEntity, "Validation failed", validationErr.Error())
	case errors.As(err, &referenceErr):
		utils.JSONError(c, http.StatusNotFound, "Unknown reference", referenceErr.Error())
	case errors.As(err, &transitionErr):
		utils.JSONError(c, http.StatusConflict, "Invalid transition", transitionErr.Error())
	case errors.As(err, &transientErr):
		utils.JSONError(c, http.StatusServiceUnavailable, "Temporarily unavailable", transientErr.Error())
	case errors.As(err, &gapErr):
		utils.JSONError(c, http.StatusInternalServerError, "Approval partially applied", gapErr.Error())
	default:
		utils.JSONError(c, http.StatusInternalServerError, "Internal error", err.Error())
	}
}
