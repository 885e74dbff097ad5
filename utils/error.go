package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse is the transport envelope for every failed request. The
// classification of service errors (validation, reference, transition,
// transient I/O, consistency gap) happens in the handlers; this file only
// carries the shape and the last-resort panic recovery.
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// ErrorHandler converts an unrecovered panic into a 500 envelope so one
// broken handler cannot take the process down with it.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				GetLogger().Error("panic recovered in handler",
					zap.Any("panic", r),
					zap.String("path", c.FullPath()))
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Error: "internal error",
				})
			}
		}()
		c.Next()
	}
}

// JSONError writes the shared error envelope and logs it at warn level.
func JSONError(c *gin.Context, status int, message, detail string) {
	GetLogger().Warn(message, zap.Int("status", status), zap.String("detail", detail))
	c.JSON(status, ErrorResponse{Error: message, Detail: detail})
}
