package auth

import (
	"errors"
	"fmt"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrUsernameTaken      = fmt.Errorf("username already registered: %w", ErrUserExists)
	ErrEmailTaken         = fmt.Errorf("email already registered: %w", ErrUserExists)
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrNoSession          = errors.New("no session")
)
