package jwtutil

import (
	"testing"
	"time"

	"github.com/Phambanam/tram-che-bien-sub000/pkg/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	Initialize(&config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1})

	token, err := GenerateToken(7, "nguyenvana", "Nguyen Van A", "unit-assistant", 3)
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "nguyenvana", claims.Username)
	assert.Equal(t, "unit-assistant", claims.Role)
	assert.Equal(t, uint(3), claims.UnitID)
}

func TestValidateToken_RejectsNonHMACSigningMethod(t *testing.T) {
	Initialize(&config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1})

	claims := UserClaims{
		Username: "nguyenvana",
		UserID:   7,
		Role:     "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ValidateToken(unsigned)
	assert.Error(t, err)
}

func TestValidateToken_RejectsWrongKey(t *testing.T) {
	Initialize(&config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1})
	token, err := GenerateToken(7, "nguyenvana", "Nguyen Van A", "unit-assistant", 3)
	require.NoError(t, err)

	Initialize(&config.JWTConfig{SigningKey: "another-key", ExpirationHours: 1})
	_, err = ValidateToken(token)
	assert.Error(t, err)
}
