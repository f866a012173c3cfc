package middleware

// identity.go holds helpers that read what JWTAuth stored in the context.

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/attendance-ledger/internal/model"
)

// CurrentSession returns the authenticated session, if any.
func CurrentSession(c echo.Context) (model.Session, bool) {
	s, ok := c.Get("session").(model.Session)
	return s, ok
}

// userID returns the authenticated employee name, or "anon".
func userID(c echo.Context) string {
	if s, ok := c.Get("user_id").(string); ok && s != "" {
		return s
	}
	return "anon"
}
