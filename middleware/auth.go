package middleware

import (
	"net/http"
	"strings"

	"knead/services/auth"

	"github.com/gin-gonic/gin"
)

// AuthContextKey is where the resolved authorization context lives on the
// gin context.
const AuthContextKey = "authContext"

// AuthMiddleware validates the bearer token and resolves the session's
// authorization context exactly once per request. Downstream code reads
// capabilities from the context, never raw role strings.
func AuthMiddleware(authSvc auth.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		authCtx, err := authSvc.ContextFor(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or revoked token"})
			return
		}

		c.Set(AuthContextKey, authCtx)
		c.Set("token", tokenString)
		c.Next()
	}
}

// GetAuthContext returns the request's authorization context, or nil if the
// request was not authenticated.
func GetAuthContext(c *gin.Context) *auth.Context {
	value, ok := c.Get(AuthContextKey)
	if !ok {
		return nil
	}
	authCtx, ok := value.(*auth.Context)
	if !ok {
		return nil
	}
	return authCtx
}

// RequireCapability gates a route on one capability from the session's
// authorization context.
func RequireCapability(capability string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authCtx := GetAuthContext(c)
		if authCtx == nil || !authCtx.HasCapability(capability) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient capabilities"})
			return
		}
		c.Next()
	}
}
