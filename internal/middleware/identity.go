package middleware

// identity.go holds the context keys shared by the middleware chain and
// the handlers.  JWTAuth stores the caller as an authz.Actor; everything
// downstream reads it back through CurrentActor.

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/nightclub-booking/internal/authz"
)

const (
	ctxActor     = "actor"
	ctxRequestID = "request_id"
)

// CurrentActor returns the authenticated caller, if any.
func CurrentActor(c echo.Context) (authz.Actor, bool) {
	a, ok := c.Get(ctxActor).(authz.Actor)
	return a, ok
}

// SetActor stores a for downstream handlers.  Tests use it to skip
// token parsing.
func SetActor(c echo.Context, a authz.Actor) { c.Set(ctxActor, a) }

// userKey identifies the caller in rate limit keys and logs: the user
// id when authenticated, "guest" otherwise.
func userKey(c echo.Context) string {
	if a, ok := CurrentActor(c); ok {
		return strconv.FormatUint(a.UserID, 10)
	}
	return "guest"
}
