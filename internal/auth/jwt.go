package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"ecorueda/internal/domain"
)

var (
	// ErrTokenExpired is returned when the token's expiry has passed.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid is returned for any other token verification failure.
	ErrTokenInvalid = errors.New("token invalid")
)

// Claims is the JWT payload issued on register and login.
type Claims struct {
	UserID string      `json:"user_id"`
	Email  string      `json:"email"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// JWTManager issues and verifies HS256 bearer tokens.
type JWTManager struct {
	secret   []byte
	tokenTTL time.Duration
	issuer   string
}

// NewJWTManager creates a JWTManager with the given signing secret.
func NewJWTManager(secret string, tokenTTL time.Duration, issuer string) *JWTManager {
	return &JWTManager{
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		issuer:   issuer,
	}
}

// Generate creates a signed token for the given user.
func (m *JWTManager) Generate(userID, email string, role domain.Role) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenTTL)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Verify parses and validates a raw token string.
func (m *JWTManager) Verify(raw string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
