package routes

import (
	"net/http"

	"bookline/handlers"
	"bookline/middleware"
	"bookline/utils"

	"github.com/gin-gonic/gin"
)

// HandlerBundle collects the wired handlers for route registration.
type HandlerBundle struct {
	Chat         *handlers.ChatHandler
	Booking      *handlers.BookingHandler
	Availability *handlers.AvailabilityHandler
	Transcribe   *handlers.TranscribeHandler
}

// RegisterChatRoutes registers the conversational endpoints used by the widget.
func RegisterChatRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/chat")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.POST("", hb.Chat.Chat)
		api.POST("/transcribe", hb.Transcribe.Transcribe)
	}
}

// RegisterBookingRoutes registers the direct booking entry points.
func RegisterBookingRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/bookings")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.POST("", hb.Booking.CreateBooking)
		api.GET("/:id", hb.Booking.GetBooking)

		// Status transitions are an operator action.
		admin := api.Group("")
		admin.Use(middleware.AdminAuthMiddleware())
		admin.PATCH("/:id/status", hb.Booking.UpdateBookingStatus)
	}
}

// RegisterAvailabilityRoutes registers the slot listing endpoint.
func RegisterAvailabilityRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/availability")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.GET("", hb.Availability.GetSlots)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, utils.GetHealthStatus())
	})
}
