package utils

import (
	"github.com/golang-jwt/jwt/v5" // JWT library
)

// Claims carried by tokens from the identity provider
type Claims struct {
	AccountID            string   `json:"account_id"` // Principal account ID
	Username             string   `json:"username"`   // Principal username
	Roles                []string `json:"roles"`      // Roles granted at issue time
	jwt.RegisteredClaims          // Standard JWT claims
}

// ParseJWT parses and validates an HS256 token string
func ParseJWT(tokenStr, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		return []byte(secret), nil // Return the secret key for validation
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	// Check for parsing errors
	if err != nil {
		return nil, err // Return error if parsing fails
	}
	// Validate token and extract claims
	if claims, ok := token.Claims.(*Claims); ok && token.Valid && claims.AccountID != "" {
		return claims, nil // Return claims if valid
	}
	// Return error if token is invalid
	return nil, jwt.ErrTokenInvalidClaims
}
