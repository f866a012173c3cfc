// Package router registers the HTTP routes of the attendance API.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/attendance-ledger/internal/handler"
	"github.com/iliyamo/attendance-ledger/internal/middleware"
	"github.com/iliyamo/attendance-ledger/internal/model"
)

// Deps carries what the protected routes need besides handlers.
type Deps struct {
	JWTSecret string
	Sessions  middleware.SessionLookup
	// RateLimit and Cache may be pass-through middleware when Redis is
	// unavailable.
	RateLimit echo.MiddlewareFunc
	Cache     echo.MiddlewareFunc
}

// Handlers groups every handler the router mounts.
type Handlers struct {
	Auth       *handler.AuthHandler
	Attendance *handler.AttendanceHandler
	Sync       *handler.SyncHandler
	Reports    *handler.ReportHandler
	Admin      *handler.AdminHandler
}

// RegisterRoutes registers routes that need no authentication: the health
// check and the Prometheus scrape endpoint.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterAPI mounts the /v1 API.  Login is public; everything else runs
// behind JWTAuth, and /v1/admin additionally requires the ADMIN role.
func RegisterAPI(e *echo.Echo, h Handlers, d Deps) {
	rl := d.RateLimit
	if rl == nil {
		rl = func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	cache := d.Cache
	if cache == nil {
		cache = func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	e.POST("/v1/auth/login", h.Auth.Login, rl)

	v1 := e.Group("/v1", middleware.JWTAuth(d.JWTSecret, d.Sessions), rl)
	v1.POST("/auth/logout", h.Auth.Logout)
	v1.GET("/me", h.Auth.Me)

	v1.GET("/status", h.Sync.Status)
	v1.GET("/notices", h.Sync.Notices)
	v1.GET("/roster", h.Sync.Roster)

	v1.POST("/attendance/checkin", h.Attendance.CheckIn)
	v1.POST("/attendance/checkout", h.Attendance.CheckOut)

	v1.GET("/reports/:employee", h.Reports.Get, cache)
	v1.GET("/reports/:employee/export", h.Reports.Export, cache)

	admin := v1.Group("/admin", middleware.RequireRole(model.RoleAdmin))
	admin.POST("/employees", h.Admin.AddEmployee)
	admin.DELETE("/employees/:name", h.Admin.RemoveEmployee)
	admin.PUT("/passphrase", h.Admin.ChangePassphrase)
	admin.PUT("/policy", h.Admin.SetPolicy)
	admin.GET("/wages", h.Admin.ListWages)
	admin.PUT("/wages/:employee", h.Admin.PutWage)
	admin.DELETE("/wages/:employee", h.Admin.DeleteWage)
	admin.POST("/sync", h.Sync.Sync)
}
