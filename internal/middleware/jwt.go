// Package middleware holds the HTTP middleware of the attendance API:
// authentication, role checks, rate limiting and the report cache.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/attendance-ledger/internal/model"
	"github.com/iliyamo/attendance-ledger/internal/utils"
)

// SessionLookup resolves the session a token refers to.
type SessionLookup interface {
	Get(ctx context.Context, id string) (model.Session, error)
}

// JWTAuth validates a Bearer access token and checks that its session still
// exists.  On success the employee name, role and session are stored in the
// context under "user_id", "role" and "session".
func JWTAuth(secret string, sessions SessionLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			claims, err := utils.ParseAccessToken(secret, strings.TrimPrefix(auth, "Bearer "))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			// Logged-out sessions are gone from the store even though the
			// token itself has not expired yet.
			sess, err := sessions.Get(c.Request().Context(), claims.SessionID)
			if err != nil || sess.Name != claims.Subject || sess.Role() != claims.Role {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "session expired"})
			}

			c.Set("user_id", sess.Name)
			c.Set("role", sess.Role())
			c.Set("session", sess)
			return next(c)
		}
	}
}
