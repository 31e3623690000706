// Package router wires the HTTP handlers to their routes and middleware.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/nightclub-booking/internal/handler"
	"github.com/iliyamo/nightclub-booking/internal/middleware"
)

// Handlers groups everything the routes dispatch to.
type Handlers struct {
	Health   *handler.HealthHandler
	Events   *handler.EventHandler
	Bookings *handler.BookingHandler
	Catalog  *handler.CatalogHandler
	Admin    *handler.AdminHandler
}

// Options carries the secret used to verify access tokens and the
// Redis-backed middleware.  Nil middleware is skipped.
type Options struct {
	JWTSecret string
	Cache     echo.MiddlewareFunc
	RateLimit echo.MiddlewareFunc
}

// Register installs every route on e.
func Register(e *echo.Echo, h Handlers, opt Options) {
	RegisterHealth(e, h.Health)
	RegisterPublic(e, h, opt)
	RegisterBooking(e, h, opt)
	RegisterStaff(e, h, opt)
	RegisterAdmin(e, h, opt)
}

// RegisterHealth exposes liveness and readiness probes outside /v1.
func RegisterHealth(e *echo.Echo, h *handler.HealthHandler) {
	e.GET("/healthz", h.Live)
	e.GET("/readyz", h.Ready)
}

// RegisterPublic registers the unauthenticated browse endpoints.  Their
// responses go through the listing cache.
func RegisterPublic(e *echo.Echo, h Handlers, opt Options) {
	mw := use(opt.Cache)
	g := e.Group("/v1")
	g.GET("/categories", h.Catalog.ListCategories, mw...)
	g.GET("/zones", h.Catalog.ListZones, mw...)
	g.GET("/zones/:id/seats", h.Catalog.ListZoneSeats, mw...)
	g.GET("/events", h.Events.List, mw...)
	g.GET("/events/:id", h.Events.Get, mw...)
	g.GET("/events/:id/seats", h.Events.EventSeats, mw...)
}

func use(mw ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	out := make([]echo.MiddlewareFunc, 0, len(mw))
	for _, m := range mw {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}

// authenticated returns JWT verification followed by the rate limiter,
// so buckets are keyed per user.
func authenticated(opt Options) []echo.MiddlewareFunc {
	return use(middleware.JWTAuth(opt.JWTSecret), opt.RateLimit)
}
