package routes

import (
	"knead/handlers"
	"knead/middleware"
	"knead/models"
	"knead/services/auth"
	"knead/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// HandlerBundle aggregates the handlers and services the router needs.
type HandlerBundle struct {
	Auth    auth.AuthService
	User    *handlers.UserHandler
	Booking *handlers.BookingHandler
	Events  *handlers.EventsHandler
	Masseur *handlers.MasseurHandler
	Admin   *handlers.AdminHandler
}

// RegisterRoutes wires the HTTP surface onto the router.
func RegisterRoutes(router *gin.Engine, b *HandlerBundle) {
	router.Use(cors.Default())

	router.GET("/health", func(c *gin.Context) {
		status := utils.GetHealthStatus()
		code := 200
		if !status.Healthy() {
			code = 503
		}
		c.JSON(code, status)
	})

	api := router.Group("/api")

	// Public endpoints.
	api.POST("/users/register", b.User.RegisterHandler)
	api.POST("/users/signin", b.User.SignInHandler)

	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware(b.Auth))
	{
		authed.POST("/users/signout", b.User.SignOutHandler)
		authed.GET("/users/me", b.User.MeHandler)

		// Customer-facing discovery and catalog.
		authed.GET("/masseurs", b.Masseur.DiscoverHandler)
		authed.GET("/massage-types", b.Masseur.CatalogHandler)
		authed.POST("/masseurs/apply", b.Masseur.ApplyHandler)

		// Booking lifecycle.
		authed.POST("/bookings", b.Booking.CreateBooking)
		authed.GET("/bookings/:id", b.Booking.GetBooking)
		authed.GET("/bookings/:id/events", b.Events.StreamBooking)

		// Provider-only operations.
		provider := authed.Group("")
		provider.Use(middleware.RequireCapability(models.CapabilityProvider))
		{
			provider.POST("/bookings/:id/confirm", b.Booking.ConfirmBooking)
			provider.POST("/bookings/:id/decline", b.Booking.DeclineBooking)
			provider.GET("/masseur/working-set", b.Booking.WorkingSet)
		}

		// Admin-only operations.
		admin := authed.Group("/admin")
		admin.Use(middleware.RequireCapability(models.CapabilityAdmin))
		{
			admin.GET("/applications", b.Admin.ListApplicationsHandler)
			admin.POST("/applications/:masseurId/approve", b.Admin.ApproveApplicationHandler)
			admin.POST("/applications/:masseurId/reject", b.Admin.RejectApplicationHandler)
		}
	}
}
