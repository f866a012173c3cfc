package handler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/attendance-ledger/internal/coordinator"
	"github.com/iliyamo/attendance-ledger/internal/export"
	"github.com/iliyamo/attendance-ledger/internal/model"
	"github.com/iliyamo/attendance-ledger/internal/report"
	"github.com/iliyamo/attendance-ledger/internal/repository"
)

// ReportHandler serves per-employee report windows and their exports.
type ReportHandler struct {
	Coord     *coordinator.Coordinator
	Wages     *repository.WageRepo
	WeekStart time.Weekday
	Now       func() time.Time
	Logger    *zap.Logger
}

func NewReportHandler(coord *coordinator.Coordinator, wages *repository.WageRepo, weekStart time.Weekday, logger *zap.Logger) *ReportHandler {
	if coord == nil || wages == nil {
		panic("nil dependency passed to NewReportHandler")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{Coord: coord, Wages: wages, WeekStart: weekStart, Now: time.Now, Logger: logger.Named("report")}
}

// apiError is a response status and message produced before any output.
type apiError struct {
	status int
	msg    string
}

// build parses the query and assembles the window.
func (h *ReportHandler) build(c echo.Context) (report.Window, *apiError) {
	employee := c.Param("employee")
	if !canSee(c, employee) {
		return report.Window{}, &apiError{http.StatusForbidden, "forbidden"}
	}
	proj := h.Coord.Snapshot()
	if proj == nil {
		return report.Window{}, &apiError{http.StatusServiceUnavailable, "attendance log not loaded yet"}
	}
	logs := proj.EmployeeLogs(employee)
	if logs == nil && !proj.HasEmployee(employee) {
		return report.Window{}, &apiError{http.StatusNotFound, "unknown employee"}
	}

	loc := h.Coord.Location()
	now := h.Now().In(loc)
	ref := now
	if raw := c.QueryParam("date"); raw != "" {
		_, t, perr := model.ParseDate(raw, loc)
		if perr != nil {
			return report.Window{}, &apiError{http.StatusBadRequest, perr.Error()}
		}
		ref = t
	}
	var err error
	g := model.GranularityDay
	if raw := c.QueryParam("granularity"); raw != "" {
		if g, err = model.ParseGranularity(raw); err != nil {
			return report.Window{}, &apiError{http.StatusBadRequest, err.Error()}
		}
	}
	// one global policy applies to everyone; admins may preview the other one
	policy := h.Coord.Policy()
	if raw := c.QueryParam("policy"); raw != "" {
		if !session(c).IsAdmin {
			return report.Window{}, &apiError{http.StatusForbidden, "policy preview requires admin"}
		}
		if policy, err = model.ParsePolicy(raw); err != nil {
			return report.Window{}, &apiError{http.StatusBadRequest, err.Error()}
		}
	}
	switch c.QueryParam("nav") {
	case "":
	case "prev":
		ref = report.Shift(ref, g, -1)
	case "next":
		// advancing into the future is a no-op
		if report.CanAdvance(ref, g, h.WeekStart, now) {
			ref = report.Shift(ref, g, 1)
		}
	default:
		return report.Window{}, &apiError{http.StatusBadRequest, "nav must be prev or next"}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	wage, _, werr := h.Wages.Get(ctx, employee)
	if werr != nil {
		h.Logger.Warn("wage lookup failed", zap.String("employee", employee), zap.Error(werr))
	}

	return report.Assemble(logs, report.Query{
		Employee:    employee,
		Ref:         ref,
		Granularity: g,
		Policy:      policy,
		WeekStart:   h.WeekStart,
		HourlyWage:  wage,
		Now:         now,
	}), nil
}

// CacheStamp identifies the state report responses are derived from: the
// committed projection, the global policy and the wage map.
func (h *ReportHandler) CacheStamp() string {
	return fmt.Sprintf("%d.%s.%d", h.Coord.Version(), h.Coord.Policy(), h.Wages.Generation())
}

// Get returns the window as JSON.
func (h *ReportHandler) Get(c echo.Context) error {
	w, e := h.build(c)
	if e != nil {
		return fail(c, e.status, e.msg)
	}
	return c.JSON(http.StatusOK, w)
}

// Export returns the window as a CSV (default) or XLSX attachment.
func (h *ReportHandler) Export(c echo.Context) error {
	w, e := h.build(c)
	if e != nil {
		return fail(c, e.status, e.msg)
	}

	var (
		buf   bytes.Buffer
		ctype string
		ext   string
		err   error
	)
	loc := h.Coord.Location()
	switch c.QueryParam("format") {
	case "", "csv":
		ctype, ext = "text/csv; charset=utf-8", "csv"
		err = export.WriteCSV(&buf, w, loc)
	case "xlsx":
		ctype, ext = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "xlsx"
		err = export.WriteXLSX(&buf, w, loc)
	default:
		return fail(c, http.StatusBadRequest, "format must be csv or xlsx")
	}
	if err != nil {
		h.Logger.Error("export failed", zap.Error(err))
		return fail(c, http.StatusInternalServerError, "export failed")
	}

	filename := fmt.Sprintf("attendance_%s_%s_%s.%s", w.Employee, w.Start, w.End, ext)
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, ctype, buf.Bytes())
}
