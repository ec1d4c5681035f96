package utils

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// SessionTokenClaims represents the claims in a session access token issued
// when a one-on-one is scheduled.
type SessionTokenClaims struct {
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId"`
	OrgID     string `json:"orgId"`
	jwt.RegisteredClaims
}

// ValidateSessionToken validates a JWT token and returns the claims
func ValidateSessionToken(tokenString string, secret []byte) (*SessionTokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionTokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})

	if err != nil {
		return nil, err
	}

	return token.Claims.(*SessionTokenClaims), nil
}

// ExtractTokenFromHeader extracts the token from the Authorization header
func ExtractTokenFromHeader(authHeader string) (string, error) {
	if authHeader == "" {
		return "", errors.New("authorization header missing")
	}

	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return "", errors.New("invalid authorization header format")
	}

	return authHeader[7:], nil
}
