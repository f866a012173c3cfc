package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/attendance-ledger/internal/coordinator"
	"github.com/iliyamo/attendance-ledger/internal/model"
	"github.com/iliyamo/attendance-ledger/internal/repository"
)

// AdminHandler serves roster, passphrase, policy and wage management.
type AdminHandler struct {
	Coord    *coordinator.Coordinator
	Wages    *repository.WageRepo
	Settings *repository.SettingsRepo
	Logger   *zap.Logger
}

func NewAdminHandler(coord *coordinator.Coordinator, wages *repository.WageRepo, settings *repository.SettingsRepo, logger *zap.Logger) *AdminHandler {
	if coord == nil || wages == nil || settings == nil {
		panic("nil dependency passed to NewAdminHandler")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandler{Coord: coord, Wages: wages, Settings: settings, Logger: logger.Named("admin")}
}

type employeeReq struct {
	Name string `json:"name"`
}

type mutationResp struct {
	Action  model.Action `json:"action"`
	Name    string       `json:"name"`
	Roster  []string     `json:"roster"`
	Pending bool         `json:"pending"`
}

// AddEmployee applies the change optimistically and answers 202 at once.
// With ?wait=true it answers after the remote append: 201 on success, or the
// append error after rollback.
func (h *AdminHandler) AddEmployee(c echo.Context) error {
	var req employeeReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	m, err := h.Coord.AddEmployee(c.Request().Context(), req.Name)
	if err != nil {
		return failErr(c, err)
	}
	return h.respond(c, m, http.StatusCreated)
}

// RemoveEmployee mirrors AddEmployee.
func (h *AdminHandler) RemoveEmployee(c echo.Context) error {
	m, err := h.Coord.RemoveEmployee(c.Request().Context(), c.Param("name"))
	if err != nil {
		return failErr(c, err)
	}
	return h.respond(c, m, http.StatusOK)
}

func (h *AdminHandler) respond(c echo.Context, m *coordinator.Mutation, done int) error {
	resp := mutationResp{Action: m.Action, Name: m.Name, Roster: m.Roster, Pending: true}
	if c.QueryParam("wait") != "true" {
		return c.JSON(http.StatusAccepted, resp)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 4*requestTimeout)
	defer cancel()
	if err := m.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			// still pending; the outcome will show up as a notice
			return c.JSON(http.StatusAccepted, resp)
		}
		return failErr(c, err)
	}
	resp.Pending = false
	return c.JSON(done, resp)
}

type passphraseReq struct {
	Passphrase string `json:"passphrase"`
}

func (h *AdminHandler) ChangePassphrase(c echo.Context) error {
	var req passphraseReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	if err := h.Coord.ChangePassphrase(ctx, req.Passphrase); err != nil {
		return failErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type policyReq struct {
	Policy string `json:"policy"`
}

// SetPolicy switches the global hour policy and persists it.
func (h *AdminHandler) SetPolicy(c echo.Context) error {
	var req policyReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	p, err := model.ParsePolicy(req.Policy)
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	if err := h.Settings.SetPolicy(ctx, p); err != nil {
		h.Logger.Error("persist policy", zap.Error(err))
		return fail(c, http.StatusInternalServerError, "save policy failed")
	}
	h.Coord.SetPolicy(p)
	return c.JSON(http.StatusOK, echo.Map{"policy": p})
}

func (h *AdminHandler) ListWages(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	wages, err := h.Wages.All(ctx)
	if err != nil {
		return failErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"wages": wages})
}

type wageReq struct {
	HourlyWage *float64 `json:"hourly_wage"`
}

func (h *AdminHandler) PutWage(c echo.Context) error {
	name := strings.TrimSpace(c.Param("employee"))
	var req wageReq
	if err := c.Bind(&req); err != nil || req.HourlyWage == nil {
		return fail(c, http.StatusBadRequest, "hourly_wage required")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	if err := h.Wages.Set(ctx, name, *req.HourlyWage); err != nil {
		return failErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"employee": name, "hourly_wage": *req.HourlyWage})
}

func (h *AdminHandler) DeleteWage(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	if err := h.Wages.Delete(ctx, c.Param("employee")); err != nil {
		return failErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
