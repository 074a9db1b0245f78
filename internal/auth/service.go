package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/amaturano/event-management/internal/auditlog"
	"golang.org/x/crypto/bcrypt"
)

// Mailer delivers the password reset link.
type Mailer interface {
	SendPasswordReset(to, name, link string) error
}

type Service interface {
	Register(ctx context.Context, in RegisterInput, ip string) (*User, error)
	Login(ctx context.Context, in LoginInput, ip string) (*User, error)
	Logout(ctx context.Context, userID uint, ip string)
	GetUserByID(ctx context.Context, id uint) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)

	// Password reset
	RequestPasswordReset(ctx context.Context, email, ip string) error
	VerifyResetToken(ctx context.Context, token string) (*User, error)
	ResetPassword(ctx context.Context, token, newPassword, ip string) error
}

type Options struct {
	// BaseURL prefixes the reset link sent by mail.
	BaseURL       string
	CreateProfile bool
}

type service struct {
	repo    Repository
	tokens  *TokenManager
	mailer  Mailer
	audit   auditlog.Service
	opts    Options
	compare func(hash, password []byte) error
}

func NewService(repo Repository, tokens *TokenManager, mailer Mailer, audit auditlog.Service, opts Options) Service {
	return &service{repo: repo, tokens: tokens, mailer: mailer, audit: audit, opts: opts, compare: bcrypt.CompareHashAndPassword}
}

// =============================
// Register
// =============================

type RegisterInput struct {
	Username string
	Email    string
	Password string
	Name     string
	Lastname string
}

func (s *service) Register(ctx context.Context, in RegisterInput, ip string) (*User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	// Best effort; the unique indexes decide.
	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("lookup username: %w", err)
	}
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		Username:      username,
		Email:         email,
		PasswordHash:  string(hash),
		RegisteredVia: "local",
		Name:          strings.TrimSpace(in.Name),
		Lastname:      strings.TrimSpace(in.Lastname),
	}
	var profile *UserProfile
	if s.opts.CreateProfile {
		profile = &UserProfile{}
	}

	if err := s.repo.Create(ctx, user, profile); err != nil {
		if errors.Is(err, ErrUserExists) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log(ctx, &user.ID, auditlog.ActionUserRegistered, map[string]interface{}{"username": user.Username}, ip, auditlog.StatusSuccess)
	return user, nil
}

// =============================
// Login / Logout
// =============================

// unknownUserHash is compared against when the username does not exist.
var unknownUserHash, _ = bcrypt.GenerateFromPassword([]byte("no such user"), bcrypt.DefaultCost)

type LoginInput struct {
	Username string
	Password string
}

func (s *service) Login(ctx context.Context, in LoginInput, ip string) (*User, error) {
	user, err := s.repo.FindByUsername(ctx, strings.TrimSpace(in.Username))
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	// unknown usernames still pay for one comparison
	hash := unknownUserHash
	if user != nil {
		hash = []byte(user.PasswordHash)
	}
	if err := s.compare(hash, []byte(in.Password)); err != nil || user == nil {
		s.log(ctx, nil, auditlog.ActionLoginFailed, map[string]interface{}{"username": in.Username}, ip, auditlog.StatusFailure)
		return nil, ErrInvalidCredentials
	}

	s.log(ctx, &user.ID, auditlog.ActionLoginSuccess, nil, ip, auditlog.StatusSuccess)
	return user, nil
}

func (s *service) Logout(ctx context.Context, userID uint, ip string) {
	s.log(ctx, &userID, auditlog.ActionLogout, nil, ip, auditlog.StatusSuccess)
}

func (s *service) GetUserByID(ctx context.Context, id uint) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	return s.repo.FindByUsername(ctx, strings.TrimSpace(username))
}

// =============================
// Password reset
// =============================

// RequestPasswordReset mails a reset link when the email belongs to an account. Unknown
// addresses return nil so callers answer identically either way.
func (s *service) RequestPasswordReset(ctx context.Context, email, ip string) error {
	user, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, ErrUserNotFound) {
		log.Printf("ℹ️ Password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return fmt.Errorf("lookup email: %w", err)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return err
	}
	link := s.opts.BaseURL + "/auth/reset_password/" + token
	if err := s.mailer.SendPasswordReset(user.Email, user.DisplayName(), link); err != nil {
		return fmt.Errorf("send reset mail: %w", err)
	}

	s.log(ctx, &user.ID, auditlog.ActionPasswordResetRequested, nil, ip, auditlog.StatusSuccess)
	return nil
}

func (s *service) VerifyResetToken(ctx context.Context, token string) (*User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.FindByID(ctx, claims.UserID)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !claims.Matches(user) {
		return nil, ErrInvalidToken
	}
	return user, nil
}

func (s *service) ResetPassword(ctx context.Context, token, newPassword, ip string) error {
	user, err := s.VerifyResetToken(ctx, token)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hash)
	if err := s.repo.Update(ctx, user); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.log(ctx, &user.ID, auditlog.ActionPasswordReset, nil, ip, auditlog.StatusSuccess)
	return nil
}

// audit failures never fail the request
func (s *service) log(ctx context.Context, userID *uint, action string, details map[string]interface{}, ip, status string) {
	if s.audit == nil {
		return
	}
	_ = s.audit.LogAction(ctx, userID, action, details, ip, status)
}
