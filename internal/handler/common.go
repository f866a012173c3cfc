// Package handler defines the HTTP handlers of the attendance API.
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/attendance-ledger/internal/breaker"
	"github.com/iliyamo/attendance-ledger/internal/coordinator"
	"github.com/iliyamo/attendance-ledger/internal/middleware"
	"github.com/iliyamo/attendance-ledger/internal/model"
	"github.com/iliyamo/attendance-ledger/internal/repository"
	"github.com/iliyamo/attendance-ledger/internal/sheet"
)

// requestTimeout bounds store and network work done on behalf of a request.
const requestTimeout = 5 * time.Second

func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"error": msg})
}

// statusOf maps domain errors to HTTP status codes.
func statusOf(err error) int {
	var le *sheet.LogicalError
	var te *sheet.TransportError
	var pe *coordinator.ProcessingError
	switch {
	case errors.Is(err, coordinator.ErrInvalidName),
		errors.Is(err, coordinator.ErrInvalidAction),
		errors.Is(err, coordinator.ErrEmptyPassphrase),
		errors.Is(err, repository.ErrInvalidWage):
		return http.StatusBadRequest
	case errors.Is(err, coordinator.ErrNotOnRoster),
		errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, coordinator.ErrAlreadyOnRoster),
		errors.Is(err, coordinator.ErrWriteInFlight),
		errors.Is(err, coordinator.ErrRefreshSkipped):
		return http.StatusConflict
	case errors.Is(err, coordinator.ErrNotReady),
		errors.Is(err, breaker.ErrOpen):
		return http.StatusServiceUnavailable
	case errors.As(err, &le), errors.As(err, &te):
		return http.StatusBadGateway
	case errors.As(err, &pe):
		return http.StatusInternalServerError
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func failErr(c echo.Context, err error) error {
	return fail(c, statusOf(err), err.Error())
}

// session returns the caller's session; JWTAuth guarantees it on protected
// routes.
func session(c echo.Context) model.Session {
	s, _ := middleware.CurrentSession(c)
	return s
}

// canSee reports whether the caller may read employee's data.
func canSee(c echo.Context, employee string) bool {
	s := session(c)
	return s.IsAdmin || s.Name == employee
}
