package auth

import (
	"errors"
	"log"
	"net/http"

	"github.com/amaturano/event-management/internal/forms"
	"github.com/amaturano/event-management/internal/web"
	"github.com/gin-gonic/gin"
)

const (
	landingPath      = "/index/main-login"
	loginPath        = "/auth/login"
	resetRequestPath = "/auth/reset_password"
)

type Handler struct {
	service  Service
	sessions *SessionManager
}

func NewHandler(s Service, sessions *SessionManager) *Handler {
	return &Handler{service: s, sessions: sessions}
}

// currentUser mirrors middleware.CurrentUser; middleware imports this package.
func currentUser(c *gin.Context) *User {
	v, ok := c.Get("user")
	if !ok {
		return nil
	}
	u, _ := v.(*User)
	return u
}

// ===============================
// Registration
// ===============================

type RegisterForm struct {
	Name            string `form:"name" binding:"max=100,singleline"`
	Lastname        string `form:"lastname" binding:"max=100,singleline"`
	Username        string `form:"username" binding:"required,max=50"`
	Email           string `form:"email" binding:"required,email,max=100"`
	Password        string `form:"password" binding:"required,min=6"`
	ConfirmPassword string `form:"confirm_password" binding:"required,eqfield=Password"`
}

func (h *Handler) RegisterPage(c *gin.Context) {
	if currentUser(c) != nil {
		c.Redirect(http.StatusSeeOther, landingPath)
		return
	}
	web.Render(c, http.StatusOK, "register.html", gin.H{"Title": "Register", "Form": RegisterForm{}})
}

func (h *Handler) Register(c *gin.Context) {
	var form RegisterForm
	render := func(status int, errs forms.Errors) {
		form.Password, form.ConfirmPassword = "", ""
		web.Render(c, status, "register.html", gin.H{"Title": "Register", "Form": form, "Errors": errs})
	}

	if errs := forms.Bind(c, &form); errs.Any() {
		render(http.StatusUnprocessableEntity, errs)
		return
	}

	_, err := h.service.Register(c.Request.Context(), RegisterInput{
		Username: form.Username,
		Email:    form.Email,
		Password: form.Password,
		Name:     form.Name,
		Lastname: form.Lastname,
	}, c.ClientIP())
	switch {
	case errors.Is(err, ErrEmailTaken):
		web.AddFlash(c, web.FlashError, "Email "+form.Email+" is already registered")
		render(http.StatusConflict, nil)
		return
	case errors.Is(err, ErrUserExists):
		web.AddFlash(c, web.FlashError, "User "+form.Username+" is already registered")
		render(http.StatusConflict, nil)
		return
	case err != nil:
		log.Printf("❌ Register failed: %v", err)
		web.RenderError(c, http.StatusInternalServerError, "Registration failed, please try again later.")
		return
	}

	web.Redirect(c, loginPath, web.FlashSuccess, "Registration successful. You can now log in.")
}

// ===============================
// Login / Logout
// ===============================

type LoginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

func (h *Handler) LoginPage(c *gin.Context) {
	if currentUser(c) != nil {
		c.Redirect(http.StatusSeeOther, landingPath)
		return
	}
	web.Render(c, http.StatusOK, "login.html", gin.H{"Title": "Log in", "Form": LoginForm{}})
}

func (h *Handler) Login(c *gin.Context) {
	var form LoginForm
	if errs := forms.Bind(c, &form); errs.Any() {
		web.Render(c, http.StatusUnprocessableEntity, "login.html", gin.H{"Title": "Log in", "Form": LoginForm{Username: form.Username}, "Errors": errs})
		return
	}

	user, err := h.service.Login(c.Request.Context(), LoginInput(form), c.ClientIP())
	if errors.Is(err, ErrInvalidCredentials) {
		web.AddFlash(c, web.FlashError, "Invalid username or password")
		web.Render(c, http.StatusUnauthorized, "login.html", gin.H{"Title": "Log in", "Form": LoginForm{Username: form.Username}})
		return
	}
	if err != nil {
		log.Printf("❌ Login failed: %v", err)
		web.RenderError(c, http.StatusInternalServerError, "Login failed, please try again later.")
		return
	}

	cookie, err := h.sessions.Start(c.Request.Context(), user.ID)
	if err != nil {
		log.Printf("❌ Session start failed for user %d: %v", user.ID, err)
		web.RenderError(c, http.StatusInternalServerError, "Login failed, please try again later.")
		return
	}
	h.sessions.SetCookie(c, cookie)
	web.Redirect(c, landingPath, web.FlashSuccess, "Welcome back, "+user.DisplayName())
}

// Logout runs behind RequireAuth.
func (h *Handler) Logout(c *gin.Context) {
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		if err := h.sessions.End(c.Request.Context(), cookie); err != nil && !errors.Is(err, ErrNoSession) {
			log.Printf("⚠️ Session delete failed: %v", err)
		}
	}
	h.sessions.ClearCookie(c)
	if u := currentUser(c); u != nil {
		h.service.Logout(c.Request.Context(), u.ID, c.ClientIP())
	}
	c.Set("user", (*User)(nil))
	web.Redirect(c, landingPath, web.FlashInfo, "You have been logged out")
}

// ===============================
// Password reset
// ===============================

type ResetRequestForm struct {
	Email string `form:"email" binding:"required,email"`
}

type ResetPasswordForm struct {
	Password        string `form:"password" binding:"required,min=6"`
	ConfirmPassword string `form:"confirm_password" binding:"required,eqfield=Password"`
}

const resetSentMessage = "If an account exists for that email, a message has been sent with instructions to reset your password."

func (h *Handler) RequestResetPage(c *gin.Context) {
	web.Render(c, http.StatusOK, "reset_request.html", gin.H{"Title": "Reset password", "Form": ResetRequestForm{}})
}

func (h *Handler) RequestReset(c *gin.Context) {
	var form ResetRequestForm
	if errs := forms.Bind(c, &form); errs.Any() {
		web.Render(c, http.StatusUnprocessableEntity, "reset_request.html", gin.H{"Title": "Reset password", "Form": form, "Errors": errs})
		return
	}

	if err := h.service.RequestPasswordReset(c.Request.Context(), form.Email, c.ClientIP()); err != nil {
		log.Printf("❌ Password reset request failed: %v", err)
		web.RenderError(c, http.StatusInternalServerError, "Could not send the reset email, please try again later.")
		return
	}
	web.Redirect(c, loginPath, web.FlashInfo, resetSentMessage)
}

func (h *Handler) ResetWithTokenPage(c *gin.Context) {
	token := c.Param("token")
	if !h.validToken(c, token) {
		return
	}
	web.Render(c, http.StatusOK, "reset_token.html", gin.H{"Title": "Choose a new password", "Form": ResetPasswordForm{}, "Token": token})
}

func (h *Handler) ResetWithToken(c *gin.Context) {
	token := c.Param("token")
	if !h.validToken(c, token) {
		return
	}

	var form ResetPasswordForm
	if errs := forms.Bind(c, &form); errs.Any() {
		web.Render(c, http.StatusUnprocessableEntity, "reset_token.html", gin.H{"Title": "Choose a new password", "Form": ResetPasswordForm{}, "Token": token, "Errors": errs})
		return
	}

	err := h.service.ResetPassword(c.Request.Context(), token, form.Password, c.ClientIP())
	if errors.Is(err, ErrInvalidToken) {
		web.Redirect(c, resetRequestPath, web.FlashWarning, "That is an invalid or expired token")
		return
	}
	if err != nil {
		log.Printf("❌ Password reset failed: %v", err)
		web.RenderError(c, http.StatusInternalServerError, "Could not update the password, please try again later.")
		return
	}
	web.Redirect(c, loginPath, web.FlashSuccess, "Your password has been updated! You are now able to log in")
}

func (h *Handler) validToken(c *gin.Context, token string) bool {
	_, err := h.service.VerifyResetToken(c.Request.Context(), token)
	if err == nil {
		return true
	}
	if !errors.Is(err, ErrInvalidToken) {
		log.Printf("❌ Reset token check failed: %v", err)
		web.RenderError(c, http.StatusInternalServerError, "Something went wrong, please try again later.")
		return false
	}
	web.Redirect(c, resetRequestPath, web.FlashWarning, "That is an invalid or expired token")
	return false
}
