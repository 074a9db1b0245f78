package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const resetPurpose = "password_reset"

// ResetClaims is the payload of a password reset token. Fingerprint is derived from the
// password hash at issue time, so a token stops working once the password changes.
type ResetClaims struct {
	UserID      uint   `json:"user_id"`
	Purpose     string `json:"purpose"`
	Fingerprint string `json:"fp"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 reset tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (m *TokenManager) TTL() time.Duration { return m.ttl }

func (m *TokenManager) Issue(u *User) (string, error) {
	now := m.now()
	claims := ResetClaims{
		UserID:      u.ID,
		Purpose:     resetPurpose,
		Fingerprint: passwordFingerprint(u.PasswordHash),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign reset token: %w", err)
	}
	return signed, nil
}

// Parse checks signature, expiry and purpose. Every failure is ErrInvalidToken.
func (m *TokenManager) Parse(raw string) (*ResetClaims, error) {
	var claims ResetClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || claims.Purpose != resetPurpose || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

// Matches reports whether the token was issued for the user's current password.
func (c *ResetClaims) Matches(u *User) bool {
	return u != nil && u.ID == c.UserID && c.Fingerprint == passwordFingerprint(u.PasswordHash)
}

func passwordFingerprint(hash string) string {
	sum := sha256.Sum256([]byte(hash))
	return hex.EncodeToString(sum[:8])
}
