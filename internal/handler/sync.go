package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/attendance-ledger/internal/coordinator"
)

// SyncHandler exposes the coordinator's state.
type SyncHandler struct {
	Coord *coordinator.Coordinator
}

func NewSyncHandler(coord *coordinator.Coordinator) *SyncHandler {
	if coord == nil {
		panic("nil coordinator passed to NewSyncHandler")
	}
	return &SyncHandler{Coord: coord}
}

type statusResp struct {
	Status      coordinator.Status `json:"status"`
	LastRefresh *time.Time         `json:"last_refresh"`
	Version     uint64             `json:"version"`
	Writing     bool               `json:"writing"`
	Rows        int                `json:"rows"`
	Dropped     int                `json:"dropped"`
	Policy      string             `json:"policy"`
}

func (h *SyncHandler) Status(c echo.Context) error {
	resp := statusResp{
		Status:  h.Coord.Status(),
		Version: h.Coord.Version(),
		Writing: h.Coord.Writing(),
		Policy:  string(h.Coord.Policy()),
	}
	if t := h.Coord.LastRefresh(); !t.IsZero() {
		resp.LastRefresh = &t
	}
	if p := h.Coord.Snapshot(); p != nil {
		resp.Rows, resp.Dropped = p.Rows, p.Dropped
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *SyncHandler) Notices(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"notices": h.Coord.Notices()})
}

// Roster lists active employees.  Before the first load it is 503.
func (h *SyncHandler) Roster(c echo.Context) error {
	p := h.Coord.Snapshot()
	if p == nil {
		return fail(c, http.StatusServiceUnavailable, "attendance log not loaded yet")
	}
	return c.JSON(http.StatusOK, echo.Map{"roster": p.RosterCopy(), "version": h.Coord.Version()})
}

// Sync forces a full refresh.  409 when a roster write is pending.
func (h *SyncHandler) Sync(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*requestTimeout)
	defer cancel()
	if err := h.Coord.Refresh(ctx); err != nil {
		return failErr(c, err)
	}
	return h.Status(c)
}
