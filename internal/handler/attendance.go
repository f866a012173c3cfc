package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/attendance-ledger/internal/coordinator"
	"github.com/iliyamo/attendance-ledger/internal/model"
)

// AttendanceHandler records check-ins and check-outs.
type AttendanceHandler struct {
	Coord *coordinator.Coordinator
}

func NewAttendanceHandler(coord *coordinator.Coordinator) *AttendanceHandler {
	if coord == nil {
		panic("nil coordinator passed to NewAttendanceHandler")
	}
	return &AttendanceHandler{Coord: coord}
}

type attendanceReq struct {
	Employee string `json:"employee"`
}

func (h *AttendanceHandler) CheckIn(c echo.Context) error {
	return h.record(c, model.ActionCheckIn)
}

func (h *AttendanceHandler) CheckOut(c echo.Context) error {
	return h.record(c, model.ActionCheckOut)
}

// record appends for the caller.  Admins may record for another employee
// and must name one when their session is not tied to an employee.
func (h *AttendanceHandler) record(c echo.Context, action model.Action) error {
	var req attendanceReq
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&req); err != nil {
			return fail(c, http.StatusBadRequest, "invalid body")
		}
	}
	s := session(c)
	employee := s.Name
	if target := strings.TrimSpace(req.Employee); target != "" && target != s.Name {
		if !s.IsAdmin {
			return fail(c, http.StatusForbidden, "cannot record attendance for another employee")
		}
		employee = target
	}
	if employee == model.ReservedActor {
		return fail(c, http.StatusBadRequest, "employee required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	rec, err := h.Coord.RecordAttendance(ctx, employee, action)
	if err != nil {
		return failErr(c, err)
	}
	return c.JSON(http.StatusCreated, rec)
}
