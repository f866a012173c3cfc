package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/attendance-ledger/internal/config"
	"github.com/iliyamo/attendance-ledger/internal/coordinator"
	"github.com/iliyamo/attendance-ledger/internal/model"
	"github.com/iliyamo/attendance-ledger/internal/repository"
	"github.com/iliyamo/attendance-ledger/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg      config.Config
	Coord    *coordinator.Coordinator
	Sessions *repository.SessionRepo
	Logger   *zap.Logger
}

func NewAuthHandler(cfg config.Config, coord *coordinator.Coordinator, sessions *repository.SessionRepo, logger *zap.Logger) *AuthHandler {
	if coord == nil || sessions == nil {
		panic("nil dependency passed to NewAuthHandler")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{Cfg: cfg, Coord: coord, Sessions: sessions, Logger: logger.Named("auth")}
}

// ----- DTOs -----

type loginReq struct {
	Name       string `json:"name"`
	Passphrase string `json:"passphrase"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type authResp struct {
	Session model.Session `json:"session"`
	Role    string        `json:"role"`
	Access  tokenPart     `json:"access"`
}

// Login opens a session.  Employees pick their name from the roster;
// presenting the admin passphrase opens an admin session, named after the
// employee when one is given.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	name := strings.TrimSpace(req.Name)

	proj := h.Coord.Snapshot()
	if proj == nil {
		return fail(c, http.StatusServiceUnavailable, "attendance log not loaded yet")
	}

	sess := model.Session{ID: uuid.NewString(), IssuedAt: time.Now().UTC()}
	switch {
	case req.Passphrase != "":
		if !proj.VerifyPassphrase(req.Passphrase) {
			h.Logger.Info("admin login rejected", zap.String("ip", c.RealIP()))
			return fail(c, http.StatusUnauthorized, "invalid credentials")
		}
		sess.IsAdmin = true
		sess.Name = model.ReservedActor
		if name != "" && proj.HasEmployee(name) {
			sess.Name = name
		}
	case name == "":
		return fail(c, http.StatusBadRequest, "name required")
	case !proj.HasEmployee(name):
		return fail(c, http.StatusUnauthorized, "invalid credentials")
	default:
		sess.Name = name
	}

	ttl := time.Duration(h.Cfg.AccessTTLMin) * time.Minute
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	if err := h.Sessions.Create(ctx, sess); err != nil {
		h.Logger.Error("create session", zap.Error(err))
		return fail(c, http.StatusInternalServerError, "save session failed")
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, sess.Name, sess.Role(), sess.ID, ttl)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "issue access failed")
	}
	return c.JSON(http.StatusOK, authResp{
		Session: sess,
		Role:    sess.Role(),
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// Logout deletes the caller's session; the token stops working at once.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	if err := h.Sessions.Delete(ctx, session(c).ID); err != nil {
		return fail(c, http.StatusInternalServerError, "logout failed")
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the caller's session.
func (h *AuthHandler) Me(c echo.Context) error {
	s := session(c)
	return c.JSON(http.StatusOK, echo.Map{"session": s, "role": s.Role()})
}
