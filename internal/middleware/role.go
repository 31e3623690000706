package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/nightclub-booking/internal/authz"
)

// RequireRole aborts with 403 unless JWTAuth stored an actor holding one
// of roles.  Services check the role again.
func RequireRole(roles ...authz.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			a, ok := CurrentActor(c)
			if !ok || !a.Has(roles...) {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden", "code": "forbidden"})
			}
			return next(c)
		}
	}
}
