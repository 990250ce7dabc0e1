package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func TestTokenService_GenerateAndValidate(t *testing.T) {
	secret := "super-secret-key-for-testing"
	issuer := "readme3d-test"
	subject := "profile-ci"

	setup := func() *TokenService {
		return NewTokenService(secret, issuer, 1*time.Hour)
	}

	t.Run("Success: Should generate and validate a token", func(t *testing.T) {
		service := setup()

		tokenString, err := service.GenerateToken(subject, ScopeIngest)
		assert.NoError(t, err)
		assert.NotEmpty(t, tokenString)

		extracted, err := service.ValidateToken(tokenString, ScopeIngest)
		assert.NoError(t, err)
		assert.Equal(t, subject, extracted)
	})

	t.Run("Fail: Should reject token without the scope", func(t *testing.T) {
		service := setup()

		tokenString, err := service.GenerateToken(subject)
		assert.NoError(t, err)

		extracted, err := service.ValidateToken(tokenString, ScopeIngest)
		assert.ErrorIs(t, err, ErrInsufficientScope)
		assert.Empty(t, extracted)

		extracted, err = service.ValidateToken(tokenString, "")
		assert.NoError(t, err)
		assert.Equal(t, subject, extracted)
	})

	t.Run("Fail: Should refuse an empty subject", func(t *testing.T) {
		_, err := setup().GenerateToken("")
		assert.Error(t, err)
	})

	t.Run("Fail: Should reject expired token", func(t *testing.T) {
		service := NewTokenService(secret, issuer, -1*time.Second)

		tokenString, err := service.GenerateToken(subject, ScopeIngest)
		assert.NoError(t, err)

		extracted, err := service.ValidateToken(tokenString, ScopeIngest)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "token is expired")
		assert.Empty(t, extracted)
	})

	t.Run("Fail: Should reject token with wrong secret (Tampered)", func(t *testing.T) {
		tokenString, _ := setup().GenerateToken(subject, ScopeIngest)

		attackerService := NewTokenService("wrong-key", issuer, 1*time.Hour)

		extracted, err := attackerService.ValidateToken(tokenString, ScopeIngest)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid token")
		assert.Empty(t, extracted)
	})

	t.Run("Fail: Should reject token with wrong issuer", func(t *testing.T) {
		serviceA := NewTokenService(secret, "correct-issuer", 1*time.Hour)
		tokenString, _ := serviceA.GenerateToken(subject, ScopeIngest)

		serviceB := NewTokenService(secret, "wrong-issuer", 1*time.Hour)

		extracted, err := serviceB.ValidateToken(tokenString, ScopeIngest)
		assert.Error(t, err)
		assert.Equal(t, "invalid token issuer", err.Error())
		assert.Empty(t, extracted)
	})

	t.Run("Fail: Should reject 'None' algorithm attack", func(t *testing.T) {
		token := jwt.New(jwt.SigningMethodNone)
		claims := token.Claims.(jwt.MapClaims)
		claims["sub"] = subject
		claims["iss"] = issuer
		claims["scope"] = ScopeIngest

		fakeTokenString, _ := token.SignedString(jwt.UnsafeAllowNoneSignatureType)

		_, err := setup().ValidateToken(fakeTokenString, ScopeIngest)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected signing method")
	})

	t.Run("Fail: Should reject malformed token string", func(t *testing.T) {
		extracted, err := setup().ValidateToken("this-is-not-a-jwt", ScopeIngest)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid token")
		assert.Empty(t, extracted)
	})
}
