package comment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/amaturano/event-management/internal/auth"
	"github.com/amaturano/event-management/internal/web"
	"github.com/amaturano/event-management/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUsers struct {
	auth.Service
}

func (stubUsers) GetUserByID(_ context.Context, id uint) (*auth.User, error) {
	switch id {
	case alice.ID:
		return alice, nil
	case bob.ID:
		return bob, nil
	}
	return nil, auth.ErrUserNotFound
}

func testRouter(svc Service) (*gin.Engine, *auth.SessionManager) {
	gin.SetMode(gin.TestMode)
	sessions := auth.NewSessionManager(auth.NewMemorySessionStore(), "secret", time.Hour, false)
	h := NewHandler(svc)

	r := gin.New()
	web.Load(r)
	r.Use(web.Flashes(), middleware.Session(sessions, stubUsers{}))
	authed := r.Group("/", middleware.RequireAuth())
	authed.POST("/events/:id/comments", h.AddComment)
	authed.POST("/events/:id/feedback", h.AddFeedback)
	return r, sessions
}

func post(t *testing.T, r http.Handler, sessions *auth.SessionManager, userID uint, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if userID != 0 {
		v, err := sessions.Start(context.Background(), userID)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: v})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPostCommentRedirectsToEvent(t *testing.T) {
	repo := newMemRepo(alice)
	r, sessions := testRouter(NewService(repo, knownEvents{1: true}))

	w := post(t, r, sessions, alice.ID, "/events/1/comments", url.Values{
		"content": {"See you there"},
		"rating":  {"4"},
	})

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/events/1#comments", w.Header().Get("Location"))
	require.Len(t, repo.comments, 1)
	require.NotNil(t, repo.comments[0].Rating)
	assert.Equal(t, 4, *repo.comments[0].Rating)
}

func TestPostCommentWithoutRating(t *testing.T) {
	repo := newMemRepo(alice)
	r, sessions := testRouter(NewService(repo, knownEvents{1: true}))

	w := post(t, r, sessions, alice.ID, "/events/1/comments", url.Values{"content": {"No stars"}, "rating": {""}})

	assert.Equal(t, http.StatusSeeOther, w.Code)
	require.Len(t, repo.comments, 1)
	assert.Nil(t, repo.comments[0].Rating)
}

func TestPostCommentInvalidNotStored(t *testing.T) {
	repo := newMemRepo(alice)
	r, sessions := testRouter(NewService(repo, knownEvents{1: true}))

	tests := []struct {
		name string
		form url.Values
	}{
		{"empty content", url.Values{"content": {""}}},
		{"rating out of range", url.Values{"content": {"ok"}, "rating": {"6"}}},
		{"too long", url.Values{"content": {strings.Repeat("x", 2001)}}},
		{"whitespace only", url.Values{"content": {"   \n  "}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(t, r, sessions, alice.ID, "/events/1/comments", tt.form)
			assert.Equal(t, http.StatusSeeOther, w.Code)
			assert.Equal(t, "/events/1#comments", w.Header().Get("Location"))
		})
	}
	assert.Empty(t, repo.comments)
}

func TestPostCommentRequiresLogin(t *testing.T) {
	repo := newMemRepo()
	r, sessions := testRouter(NewService(repo, knownEvents{1: true}))

	w := post(t, r, sessions, 0, "/events/1/comments", url.Values{"content": {"hi"}})

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/auth/login", w.Header().Get("Location"))
	assert.Empty(t, repo.comments)
}

func TestPostCommentUnknownEvent(t *testing.T) {
	r, sessions := testRouter(NewService(newMemRepo(alice), knownEvents{1: true}))

	assert.Equal(t, http.StatusNotFound,
		post(t, r, sessions, alice.ID, "/events/9/comments", url.Values{"content": {"hi"}}).Code)
	assert.Equal(t, http.StatusNotFound,
		post(t, r, sessions, alice.ID, "/events/abc/comments", url.Values{"content": {"hi"}}).Code)
}

func TestPostFeedback(t *testing.T) {
	repo := newMemRepo(bob)
	r, sessions := testRouter(NewService(repo, knownEvents{2: true}))

	w := post(t, r, sessions, bob.ID, "/events/2/feedback", url.Values{"feedback_text": {"More chairs please"}})

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/events/2", w.Header().Get("Location"))
	require.Len(t, repo.feedback, 1)
	assert.Equal(t, bob.ID, repo.feedback[0].UserID)

	for _, blank := range []string{"", "  \t "} {
		w = post(t, r, sessions, bob.ID, "/events/2/feedback", url.Values{"feedback_text": {blank}})
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/events/2", w.Header().Get("Location"))
	}
	assert.Len(t, repo.feedback, 1)
}
