package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is how long an issued token remains valid.
const TokenTTL = 24 * time.Hour

var (
	// ErrInvalidToken covers malformed, tampered, or wrongly signed tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken signals the token's validity window has elapsed.
	ErrExpiredToken = errors.New("token expired")
)

// Manager issues and verifies HMAC-signed bearer tokens. The signing key is
// derived once at construction and held for the process lifetime; there is no
// runtime rotation.
type Manager struct {
	key []byte
	now func() time.Time
}

// NewManager decodes the base64-encoded signing secret and returns a Manager
// ready for issuing and verifying tokens.
func NewManager(secret string) (*Manager, error) {
	key, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return nil, fmt.Errorf("decode signing secret: %w", err)
	}
	if len(key) == 0 {
		return nil, errors.New("signing secret is empty")
	}
	return &Manager{key: key, now: time.Now}, nil
}

// Issue creates a signed token for the given username, valid for TokenTTL.
func (m *Manager) Issue(username string) (string, error) {
	issued := m.now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(issued),
		ExpiresAt: jwt.NewNumericDate(issued.Add(TokenTTL)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the subject username.
func (m *Manager) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.key, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
