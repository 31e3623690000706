package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/nightclub-booking/internal/authz"
	"github.com/iliyamo/nightclub-booking/internal/middleware"
)

// RegisterStaff registers event management and manual confirmation for
// admins and moderators.
func RegisterStaff(e *echo.Echo, h Handlers, opt Options) {
	mw := append(authenticated(opt), middleware.RequireRole(authz.Staff...))
	g := e.Group("/v1")

	g.POST("/events", h.Events.Create, mw...)
	g.PUT("/events/:id", h.Events.Update, mw...)
	g.PATCH("/events/:id/status", h.Events.UpdateStatus, mw...)
	g.DELETE("/events/:id", h.Events.Delete, mw...)
	g.GET("/events/:id/statistics", h.Events.Statistics, mw...)
	g.POST("/bookings/:id/confirm", h.Bookings.Confirm, mw...)
	g.GET("/admin/events", h.Events.AdminList, mw...)
}

// RegisterAdmin registers inventory, audit and maintenance endpoints for
// admins only.
func RegisterAdmin(e *echo.Echo, h Handlers, opt Options) {
	mw := append(authenticated(opt), middleware.RequireRole(authz.RoleAdmin))
	g := e.Group("/v1/admin")

	g.POST("/zones", h.Catalog.CreateZone, mw...)
	g.POST("/zones/:id/seats", h.Catalog.AddSeats, mw...)
	g.POST("/categories", h.Catalog.CreateCategory, mw...)
	g.GET("/audit-logs", h.Admin.AuditLogs, mw...)
	g.POST("/cleanup", h.Admin.Cleanup, mw...)
}
