// Package admin issues short-lived session tokens for the admin review
// surface, so dashboards do not have to hold the static API key beyond
// the initial exchange.
package admin

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken is returned when token validation fails
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when token is expired
	ErrExpiredToken = errors.New("token expired")
	// ErrInvalidClaims is returned when claims are invalid
	ErrInvalidClaims = errors.New("invalid claims")
)

// SessionClaims represents JWT claims for an admin session
type SessionClaims struct {
	SessionID uuid.UUID `json:"session_id"`
	Role      string    `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and validates admin session tokens
type TokenService struct {
	secretKey []byte
	issuer    string
	expiresIn time.Duration
}

// NewTokenService creates a new token service
func NewTokenService(secretKey, issuer string, expiresIn time.Duration) *TokenService {
	return &TokenService{
		secretKey: []byte(secretKey),
		issuer:    issuer,
		expiresIn: expiresIn,
	}
}

// ExpiresIn reports the configured token lifetime.
func (s *TokenService) ExpiresIn() time.Duration {
	return s.expiresIn
}

// GenerateToken generates a new session token
func (s *TokenService) GenerateToken() (string, error) {
	now := time.Now()
	sessionID := uuid.New()
	claims := SessionClaims{
		SessionID: sessionID,
		Role:      "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   sessionID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiresIn)),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

// ValidateToken validates and parses a session token
func (s *TokenService) ValidateToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secretKey, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}

	return claims, nil
}

// RefreshToken issues a fresh token for a still-valid session
func (s *TokenService) RefreshToken(oldToken string) (string, error) {
	if _, err := s.ValidateToken(oldToken); err != nil {
		return "", err
	}

	return s.GenerateToken()
}
