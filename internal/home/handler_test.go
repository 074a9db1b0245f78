package home

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amaturano/event-management/internal/auth"
	"github.com/amaturano/event-management/internal/event"
	"github.com/amaturano/event-management/internal/web"
	"github.com/amaturano/event-management/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEvents []event.Event

func (s stubEvents) Upcoming(_ context.Context, f event.ListFilter) ([]event.Event, error) {
	if f.Limit > 0 && len(s) > f.Limit {
		return s[:f.Limit], nil
	}
	return s, nil
}

type stubUnread int64

func (s stubUnread) UnreadCount(context.Context, uint) (int64, error) { return int64(s), nil }

type stubUsers struct {
	auth.Service
}

func (stubUsers) GetUserByID(_ context.Context, id uint) (*auth.User, error) {
	return &auth.User{ID: id, Username: "alice", Name: "Alice"}, nil
}

func testRouter(h *Handler) (*gin.Engine, *auth.SessionManager) {
	gin.SetMode(gin.TestMode)
	sessions := auth.NewSessionManager(auth.NewMemorySessionStore(), "secret", time.Hour, false)
	r := gin.New()
	web.Load(r)
	r.Use(web.Flashes(), middleware.Session(sessions, stubUsers{}))
	r.GET("/", h.Root)
	r.GET("/index/main-login", h.Index)
	r.GET("/healthz", h.Healthz)
	return r, sessions
}

func TestRootRedirects(t *testing.T) {
	r, _ := testRouter(NewHandler(stubEvents{}, stubUnread(0)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/index/main-login", w.Header().Get("Location"))
}

func TestIndexAnonymous(t *testing.T) {
	events := stubEvents{{ID: 3, Title: "Open air cinema", StartDate: time.Date(2026, 7, 1, 21, 0, 0, 0, time.UTC)}}
	r, _ := testRouter(NewHandler(events, stubUnread(4)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/index/main-login", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Open air cinema")
	assert.Contains(t, w.Body.String(), "Create an account")
	assert.NotContains(t, w.Body.String(), "unread")
}

func TestIndexShowsUnreadCount(t *testing.T) {
	r, sessions := testRouter(NewHandler(stubEvents{}, stubUnread(2)))
	v, err := sessions.Start(context.Background(), 1)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/index/main-login", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: v})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Welcome back, Alice")
	assert.Contains(t, w.Body.String(), "2 unread notifications")
}

func TestHealthz(t *testing.T) {
	ok := Check{Name: "database", Ping: func(context.Context) error { return nil }}
	r, _ := testRouter(NewHandler(stubEvents{}, nil, ok))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"OK","dependencies":{"database":"OK"}}`, w.Body.String())

	down := Check{Name: "redis", Ping: func(context.Context) error { return errors.New("connection refused") }}
	r, _ = testRouter(NewHandler(stubEvents{}, nil, ok, down))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}
