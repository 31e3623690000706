// Package authz models caller identity and the role capability check
// used by the booking core.
package authz

import "github.com/iliyamo/nightclub-booking/internal/apperr"

// Role is the coarse role carried by an access token.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleUser      Role = "user"
)

// Staff lists the roles allowed to manage events and other users' bookings.
var Staff = []Role{RoleAdmin, RoleModerator}

// ParseRole converts a claim value into a Role.  Unknown values yield
// false.
func ParseRole(s string) (Role, bool) {
	switch r := Role(s); r {
	case RoleAdmin, RoleModerator, RoleUser:
		return r, true
	}
	return "", false
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID uint64
	Role   Role
}

// Has reports whether the actor's role is one of roles.
func (a Actor) Has(roles ...Role) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

// Require returns a Forbidden error unless the actor holds one of roles.
func Require(a Actor, roles ...Role) error {
	if a.Has(roles...) {
		return nil
	}
	return apperr.Forbidden("role %q is not allowed to perform this action", a.Role)
}

// RequireOwnerOr allows the owner of a resource, or any actor holding
// one of roles.
func RequireOwnerOr(a Actor, ownerID uint64, roles ...Role) error {
	if a.UserID == ownerID {
		return nil
	}
	return Require(a, roles...)
}

// System is the actor recorded for work the server does on its own,
// such as expiring stale bookings.
var System = Actor{UserID: 0, Role: RoleAdmin}
