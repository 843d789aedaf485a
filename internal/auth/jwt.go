package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type UserRole string

const (
	RoleAdmin UserRole = "ADMIN"
)

type Claims struct {
	SessionID string   `json:"sessionId"`
	Role      UserRole `json:"role"`
	jwt.RegisteredClaims
}

func ParseBearerToken(authHeader string) string {
	parts := strings.Split(strings.TrimSpace(authHeader), " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// IssueAccessToken signs an admin session token valid for ttl.
func IssueAccessToken(secret string, ttl time.Duration, now time.Time) (string, *Claims, error) {
	if strings.TrimSpace(secret) == "" {
		return "", nil, errors.New("jwt secret is not configured")
	}
	if ttl <= 0 {
		return "", nil, errors.New("token ttl must be positive")
	}
	claims := &Claims{
		SessionID: uuid.NewString(),
		Role:      RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "admin",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

func VerifyAccessToken(tokenString string, secret string) (*Claims, error) {
	if tokenString == "" {
		return nil, errors.New("token required")
	}
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("jwt secret is not configured")
	}

	claims := &Claims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}))
	_, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	if claims.ExpiresAt == nil || claims.ExpiresAt.Time.Before(time.Now()) {
		return nil, errors.New("token expired")
	}
	if claims.Role != RoleAdmin {
		return nil, errors.New("admin role required")
	}
	return claims, nil
}
