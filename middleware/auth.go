package middleware

import (
	"errors"
	"log"

	"github.com/amaturano/event-management/internal/auth"
	"github.com/amaturano/event-management/internal/web"
	"github.com/gin-gonic/gin"
)

// Session resolves the signed session cookie into the principal. It never rejects a
// request; RequireAuth does that.
func Session(sessions *auth.SessionManager, authSvc auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(auth.SessionCookie)
		if err != nil || cookie == "" {
			c.Next()
			return
		}

		userID, err := sessions.Resolve(c.Request.Context(), cookie)
		if err != nil {
			if !errors.Is(err, auth.ErrNoSession) {
				log.Printf("⚠️ Session lookup failed: %v", err)
			}
			sessions.ClearCookie(c)
			c.Next()
			return
		}

		user, err := authSvc.GetUserByID(c.Request.Context(), userID)
		if err != nil {
			log.Printf("⚠️ Session user %d not loadable: %v", userID, err)
			sessions.ClearCookie(c)
			c.Next()
			return
		}

		// Set user in context
		c.Set("user", user)
		c.Set("user_id", user.ID)
		c.Next()
	}
}

// RequireAuth sends anonymous visitors to the login page before the handler runs.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			web.Redirect(c, "/auth/login", web.FlashWarning, "Please log in to access this page.")
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the principal set by Session, or nil.
func CurrentUser(c *gin.Context) *auth.User {
	v, ok := c.Get("user")
	if !ok {
		return nil
	}
	u, _ := v.(*auth.User)
	return u
}
