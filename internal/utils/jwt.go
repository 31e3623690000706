// Package utils mints access tokens in the shape the API's JWT
// middleware verifies.  The identity service issues tokens in
// production; cmd/devtoken uses this package for local testing.
package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iliyamo/nightclub-booking/internal/authz"
)

// AccessToken is a signed HS256 JWT and its expiry.
type AccessToken struct {
	Token string
	Exp   time.Time
}

// NewAccessToken signs a token for userID with the given role, valid for
// ttlMin minutes from now.
func NewAccessToken(secret string, userID uint64, role string, ttlMin int) (AccessToken, error) {
	return newAccessToken(secret, userID, role, time.Duration(ttlMin)*time.Minute, time.Now().UTC())
}

func newAccessToken(secret string, userID uint64, role string, ttl time.Duration, now time.Time) (AccessToken, error) {
	if secret == "" {
		return AccessToken{}, fmt.Errorf("empty signing secret")
	}
	if ttl <= 0 {
		return AccessToken{}, fmt.Errorf("ttl must be positive, got %s", ttl)
	}
	r, ok := authz.ParseRole(role)
	if !ok {
		return AccessToken{}, fmt.Errorf("unknown role %q", role)
	}

	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": string(r),
		"exp":  exp.Unix(),
		"iat":  now.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}
