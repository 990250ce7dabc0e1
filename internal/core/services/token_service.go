package services

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const ScopeIngest = "snapshots:write"

var ErrInsufficientScope = errors.New("token lacks required scope")

// TokenService mints and checks operator tokens. There are no user accounts:
// the subject is whatever the operator names the client.
type TokenService struct {
	secretKey     []byte
	issuer        string
	tokenDuration time.Duration
}

func NewTokenService(secretKey string, issuer string, tokenDuration time.Duration) *TokenService {
	return &TokenService{
		secretKey:     []byte(secretKey),
		issuer:        issuer,
		tokenDuration: tokenDuration,
	}
}

func (s *TokenService) GenerateToken(subject string, scopes ...string) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("token service: subject is required")
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   subject,
		"jti":   uuid.NewString(),
		"exp":   now.Add(s.tokenDuration).Unix(),
		"iat":   now.Unix(),
		"iss":   s.issuer,
		"scope": strings.Join(scopes, " "),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("token service: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// ValidateToken returns the subject of a valid token that carries scope. An
// empty scope skips the scope check.
func (s *TokenService) ValidateToken(tokenString string, scope string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	})

	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token claims")
	}

	if iss, ok := claims["iss"].(string); !ok || iss != s.issuer {
		return "", fmt.Errorf("invalid token issuer")
	}

	subject, ok := claims["sub"].(string)
	if !ok || subject == "" {
		return "", fmt.Errorf("invalid token subject")
	}

	if scope != "" {
		granted, _ := claims["scope"].(string)
		if !slices.Contains(strings.Fields(granted), scope) {
			return "", fmt.Errorf("%w: %s", ErrInsufficientScope, scope)
		}
	}

	return subject, nil
}
