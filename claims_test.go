package kebapi_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/kebapi"
	"github.com/stretchr/testify/assert"
)

func TestJWTClaims(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	claims := &kebapi.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "testuser",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		UID:      "42",
		Name:     "testuser",
		Display:  "Test User",
		UserRole: string(kebapi.RoleUser),
	}

	t.Run("accessors expose the claim set", func(t *testing.T) {
		assert.Equal(t, "testuser", claims.Subject())
		assert.Equal(t, "42", claims.UserID())
		assert.Equal(t, "testuser", claims.Username())
		assert.Equal(t, "Test User", claims.DisplayName())
		assert.Equal(t, string(kebapi.RoleUser), claims.Role())
		assert.True(t, claims.Expires().Equal(now.Add(time.Hour)))
		assert.True(t, claims.IssuedAt().Equal(now))
	})

	t.Run("username falls back to the subject", func(t *testing.T) {
		bare := &kebapi.JWTClaims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "fallback"},
		}

		assert.Equal(t, "fallback", bare.Username())
	})

	t.Run("has role is an exact match on the single role", func(t *testing.T) {
		assert.True(t, claims.HasRole(string(kebapi.RoleUser)))
		assert.False(t, claims.HasRole(string(kebapi.RoleAdmin)))
		assert.False(t, claims.HasRole("user"))
		assert.False(t, claims.HasRole(""))

		roleless := &kebapi.JWTClaims{UID: "42"}
		assert.False(t, roleless.HasRole(""))
	})

	t.Run("zero times when the registered claims are empty", func(t *testing.T) {
		bare := &kebapi.JWTClaims{}

		assert.True(t, bare.Expires().IsZero())
		assert.True(t, bare.IssuedAt().IsZero())
	})
}
