package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/nightclub-booking/internal/authz"
)

// JWTAuth validates a Bearer access token signed with secret (HS256)
// and stores the caller's id and role as an authz.Actor in the context.
// Tokens carry the user id in "sub" and one of admin, moderator or user
// in "role".
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(auth, "Bearer ") {
				return unauthorized(c, "missing bearer token")
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
				}
				return []byte(secret), nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !tok.Valid {
				return unauthorized(c, "invalid token")
			}
			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return unauthorized(c, "invalid claims")
			}

			actor, err := actorFromClaims(claims)
			if err != nil {
				return unauthorized(c, err.Error())
			}
			SetActor(c, actor)
			return next(c)
		}
	}
}

func actorFromClaims(claims jwt.MapClaims) (authz.Actor, error) {
	var id uint64
	switch v := claims["sub"].(type) {
	case float64:
		if v <= 0 || v != float64(uint64(v)) {
			return authz.Actor{}, fmt.Errorf("invalid subject")
		}
		id = uint64(v)
	case string:
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil || n == 0 {
			return authz.Actor{}, fmt.Errorf("invalid subject")
		}
		id = n
	default:
		return authz.Actor{}, fmt.Errorf("missing subject")
	}
	s, _ := claims["role"].(string)
	role, ok := authz.ParseRole(s)
	if !ok {
		return authz.Actor{}, fmt.Errorf("unknown role")
	}
	return authz.Actor{UserID: id, Role: role}, nil
}

func unauthorized(c echo.Context, msg string) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": msg, "code": "unauthorized"})
}
