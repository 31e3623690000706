package router

import (
	"github.com/labstack/echo/v4"
)

// RegisterBooking registers the endpoints any authenticated user may
// call: availability checks and their own bookings.  Ownership is
// enforced by the services.
func RegisterBooking(e *echo.Echo, h Handlers, opt Options) {
	mw := authenticated(opt)
	g := e.Group("/v1")
	g.GET("/events/:id/seats/:seat_id/availability", h.Events.Availability, mw...)

	g.POST("/bookings", h.Bookings.Create, mw...)
	g.GET("/bookings/my", h.Bookings.Mine, mw...)
	g.POST("/bookings/pay", h.Bookings.Pay, mw...)
	g.GET("/bookings/:id", h.Bookings.Get, mw...)
	g.POST("/bookings/:id/pay", h.Bookings.Pay, mw...)
	g.POST("/bookings/:id/cancel", h.Bookings.Cancel, mw...)
}
