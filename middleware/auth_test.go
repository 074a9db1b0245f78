package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amaturano/event-management/internal/auth"
	"github.com/amaturano/event-management/internal/web"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUsers struct {
	auth.Service
	users map[uint]*auth.User
}

func (s stubUsers) GetUserByID(_ context.Context, id uint) (*auth.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, auth.ErrUserNotFound
}

func newRouter(t *testing.T, trustedProxies ...string) (*gin.Engine, *auth.SessionManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	sessions := auth.NewSessionManager(auth.NewMemorySessionStore(), "secret", time.Hour, false)
	users := stubUsers{users: map[uint]*auth.User{1: {ID: 1, Username: "alice"}}}

	r := gin.New()
	require.NoError(t, r.SetTrustedProxies(trustedProxies))
	web.Load(r)
	r.Use(web.Flashes(), ClientIP(), Session(sessions, users))
	r.GET("/private", RequireAuth(), func(c *gin.Context) {
		c.String(http.StatusOK, "hello "+CurrentUser(c).Username+" from "+GetIPFromContext(c))
	})
	return r, sessions
}

func TestRequireAuthRedirectsAnonymous(t *testing.T) {
	r, _ := newRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private", nil))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/auth/login", w.Header().Get("Location"))
}

func TestSessionLoadsPrincipal(t *testing.T) {
	r, sessions := newRouter(t)
	cookie, err := sessions.Start(context.Background(), 1)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: cookie})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello alice from 192.0.2.1", w.Body.String())
}

func TestClientIPHonoursOnlyTrustedProxies(t *testing.T) {
	tests := []struct {
		name    string
		trusted []string
		want    string
	}{
		{"no trusted proxies", nil, "192.0.2.1"},
		{"other proxy", []string{"10.0.0.0/8"}, "192.0.2.1"},
		{"peer is trusted", []string{"192.0.2.0/24"}, "203.0.113.7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, sessions := newRouter(t, tt.trusted...)
			cookie, err := sessions.Start(context.Background(), 1)
			require.NoError(t, err)

			// httptest requests come from 192.0.2.1
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			req.Header.Set("X-Forwarded-For", "203.0.113.7")
			req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: cookie})
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "hello alice from "+tt.want, w.Body.String())
		})
	}
}

func TestSessionForUnknownUserIsAnonymous(t *testing.T) {
	r, sessions := newRouter(t)
	cookie, err := sessions.Start(context.Background(), 99)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: cookie})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
}
