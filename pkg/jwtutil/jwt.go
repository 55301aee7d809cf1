package jwtutil

import (
	"fmt"
	"time"

	"github.com/Phambanam/tram-che-bien-sub000/pkg/config"

	"github.com/golang-jwt/jwt/v5"
)

var (
	secret     = []byte("secret-key")
	expiration = time.Hour * 24
)

// Initialize configures the signing key and token lifetime
func Initialize(cfg *config.JWTConfig) {
	secret = []byte(cfg.SigningKey)
	expiration = time.Hour * time.Duration(cfg.ExpirationHours)
}

// UserClaims represents the JWT claims for an authenticated principal
type UserClaims struct {
	Username string `json:"username"`
	UserID   uint   `json:"user_id"`
	FullName string `json:"full_name,omitempty"`
	Role     string `json:"role,omitempty"`
	UnitID   uint   `json:"unit_id,omitempty"`
	jwt.RegisteredClaims
}

// GenerateToken creates a JWT token carrying user, role and unit information
func GenerateToken(userID uint, username, fullName, role string, unitID uint) (string, error) {
	claims := UserClaims{
		Username: username,
		UserID:   userID,
		FullName: fullName,
		Role:     role,
		UnitID:   unitID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateToken validates and parses the JWT token
func ValidateToken(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrSignatureInvalid
}
