package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/doctrack-api/internal/models"
	appErrors "github.com/noah-isme/doctrack-api/pkg/errors"
)

func signToken(t *testing.T, secret string, claims *models.JWTClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestTokenServiceValidate(t *testing.T) {
	svc := NewTokenService("secret", "doctrack-auth")
	token := signToken(t, "secret", &models.JWTClaims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "doctrack-auth",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestTokenServiceFallsBackToSubject(t *testing.T) {
	svc := NewTokenService("secret", "")
	token := signToken(t, "secret", &models.JWTClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user-2"}})

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-2", claims.UserID)
}

func TestTokenServiceRejects(t *testing.T) {
	svc := NewTokenService("secret", "doctrack-auth")
	cases := map[string]string{
		"wrong secret": signToken(t, "other", &models.JWTClaims{UserID: "u", RegisteredClaims: jwt.RegisteredClaims{Issuer: "doctrack-auth"}}),
		"wrong issuer": signToken(t, "secret", &models.JWTClaims{UserID: "u", RegisteredClaims: jwt.RegisteredClaims{Issuer: "elsewhere"}}),
		"expired": signToken(t, "secret", &models.JWTClaims{UserID: "u", RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "doctrack-auth",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		}}),
		"no subject": signToken(t, "secret", &models.JWTClaims{RegisteredClaims: jwt.RegisteredClaims{Issuer: "doctrack-auth"}}),
		"garbage":    "not-a-token",
	}
	for name, token := range cases {
		_, err := svc.ValidateToken(token)
		assert.ErrorIs(t, err, appErrors.ErrUnauthorized, name)
	}

	_, err := NewTokenService("", "").ValidateToken("x")
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}
