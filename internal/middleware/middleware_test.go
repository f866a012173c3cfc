package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/attendance-ledger/internal/config"
	"github.com/iliyamo/attendance-ledger/internal/model"
	"github.com/iliyamo/attendance-ledger/internal/repository"
	"github.com/iliyamo/attendance-ledger/internal/utils"
)

type sessions map[string]model.Session

func (s sessions) Get(_ context.Context, id string) (model.Session, error) {
	if v, ok := s[id]; ok {
		return v, nil
	}
	return model.Session{}, repository.ErrNotFound
}

const secret = "test-secret"

func token(t *testing.T, name, role, sid string) string {
	t.Helper()
	at, err := utils.NewAccessToken(secret, name, role, sid, time.Minute)
	require.NoError(t, err)
	return at.Token
}

func serve(h echo.HandlerFunc, mw ...echo.MiddlewareFunc) func(authz string) *httptest.ResponseRecorder {
	e := echo.New()
	e.GET("/x", h, mw...)
	return func(authz string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		if authz != "" {
			req.Header.Set("Authorization", authz)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}
}

func TestJWTAuth(t *testing.T) {
	store := sessions{
		"s1": {ID: "s1", Name: "alice"},
		"s2": {ID: "s2", Name: model.ReservedActor, IsAdmin: true},
	}
	ok := func(c echo.Context) error {
		s, found := CurrentSession(c)
		if !found {
			return c.NoContent(http.StatusInternalServerError)
		}
		return c.String(http.StatusOK, s.Name+"/"+c.Get("role").(string))
	}
	do := serve(ok, JWTAuth(secret, store))

	rec := do("Bearer " + token(t, "alice", model.RoleEmployee, "s1"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice/EMPLOYEE", rec.Body.String())

	assert.Equal(t, http.StatusUnauthorized, do("").Code)
	assert.Equal(t, http.StatusUnauthorized, do("Bearer garbage").Code)
	// session gone (logged out)
	assert.Equal(t, http.StatusUnauthorized, do("Bearer "+token(t, "alice", model.RoleEmployee, "s9")).Code)
	// a token whose role differs from the stored session is refused
	assert.Equal(t, http.StatusUnauthorized, do("Bearer "+token(t, "alice", model.RoleAdmin, "s1")).Code)
}

func TestRequireRole(t *testing.T) {
	store := sessions{
		"s1": {ID: "s1", Name: "alice"},
		"s2": {ID: "s2", Name: "boss", IsAdmin: true},
	}
	do := serve(func(c echo.Context) error { return c.NoContent(http.StatusNoContent) },
		JWTAuth(secret, store), RequireRole(model.RoleAdmin))

	assert.Equal(t, http.StatusForbidden, do("Bearer "+token(t, "alice", model.RoleEmployee, "s1")).Code)
	assert.Equal(t, http.StatusNoContent, do("Bearer "+token(t, "boss", model.RoleAdmin, "s2")).Code)
}

func TestCacheKey_StampUserAndRoleScoped(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "rc", KeyStrategy: "user_route_query"}
	e := echo.New()
	mk := func(user, role string) echo.Context {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/v1/reports/alice?date=2024-03-04", nil), httptest.NewRecorder())
		c.SetPath("/v1/reports/:employee")
		c.Set("user_id", user)
		c.Set("role", role)
		return c
	}

	a1 := cacheKey(cfg, mk("alice", model.RoleEmployee), "1")
	assert.Equal(t, a1, cacheKey(cfg, mk("alice", model.RoleEmployee), "1"))
	assert.NotEqual(t, a1, cacheKey(cfg, mk("alice", model.RoleEmployee), "2"))
	assert.NotEqual(t, a1, cacheKey(cfg, mk("boss", model.RoleEmployee), "1"))
	// an admin session under the same name must not share entries
	assert.NotEqual(t, a1, cacheKey(cfg, mk("alice", model.RoleAdmin), "1"))
	assert.Contains(t, a1, "rc:")
}

func TestDecodePayload_RejectsTruncated(t *testing.T) {
	b, err := encodePayload(200, http.Header{"Content-Type": {"text/csv"}}, []byte("a,b"))
	require.NoError(t, err)
	status, hdr, body, ok := decodePayload(b)
	require.True(t, ok)
	assert.Equal(t, 200, status)
	assert.Equal(t, "text/csv", hdr.Get("Content-Type"))
	assert.Equal(t, "a,b", string(body))

	_, _, _, ok = decodePayload(b[:10])
	assert.False(t, ok)
}

func TestDisabledMiddlewarePassesThrough(t *testing.T) {
	do := serve(func(c echo.Context) error { return c.NoContent(http.StatusNoContent) },
		NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil, nil),
		NewRedisCache(config.CacheConfig{Enabled: true}, nil, func() string { return "1" }))
	assert.Equal(t, http.StatusNoContent, do("").Code)
}

func TestRedisCache_StampChangeInvalidates(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	stamp := "1.first-last.0"
	calls := 0
	h := func(c echo.Context) error {
		calls++
		return c.String(http.StatusOK, stamp+"#"+strconv.Itoa(calls))
	}
	cfg := config.CacheConfig{
		Enabled:     true,
		Methods:     map[string]bool{http.MethodGet: true},
		TTL:         time.Minute,
		KeyStrategy: "route_query",
		Prefix:      "rc",
	}
	do := serve(h, NewRedisCache(cfg, rdb, func() string { return stamp }))

	first := do("")
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	assert.Equal(t, "1.first-last.0#1", first.Body.String())

	again := do("")
	assert.Equal(t, "HIT", again.Header().Get("X-Cache"))
	assert.Equal(t, "1.first-last.0#1", again.Body.String())

	// switching the policy changes the stamp without a new projection
	stamp = "1.pairs.0"
	after := do("")
	assert.Equal(t, "MISS", after.Header().Get("X-Cache"))
	assert.Equal(t, "1.pairs.0#2", after.Body.String())
	assert.Equal(t, 2, calls)
}
