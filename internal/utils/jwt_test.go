package utils

import (
	"crypto/rand"
	"crypto/rsa"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestValidateSessionTokenSuccess(t *testing.T) {
	secret := []byte("secret-key")

	tokenStr, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &SessionTokenClaims{
		SessionID: "session-1",
		UserID:    "user-1",
		OrgID:     "org-1",
	}).SignedString(secret)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	claims, err := ValidateSessionToken(tokenStr, secret)
	if err != nil {
		t.Fatalf("expected valid token, got error %v", err)
	}
	if claims.SessionID != "session-1" || claims.UserID != "user-1" || claims.OrgID != "org-1" {
		t.Fatalf("unexpected claims: %#v", claims)
	}
}

func TestValidateSessionTokenInvalid(t *testing.T) {
	badToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &SessionTokenClaims{
		SessionID: "s",
		UserID:    "u",
	}).SignedString([]byte("other-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	if _, err := ValidateSessionToken(badToken, []byte("secret-a")); err == nil {
		t.Fatalf("expected validation failure")
	}
}

func TestValidateSessionTokenUnexpectedMethod(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 1024)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	tokenStr, err := jwt.NewWithClaims(jwt.SigningMethodRS256, &SessionTokenClaims{
		SessionID: "s",
		UserID:    "u",
	}).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := ValidateSessionToken(tokenStr, []byte("secret-a")); err == nil || !strings.Contains(err.Error(), "unexpected signing method") {
		t.Fatalf("expected signing method error, got %v", err)
	}
}

func TestValidateSessionTokenExpired(t *testing.T) {
	secret := []byte("secret-b")

	tokenStr, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &SessionTokenClaims{
		SessionID: "s",
		UserID:    "u",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}).SignedString(secret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := ValidateSessionToken(tokenStr, secret); err == nil {
		t.Fatalf("expected expiration error")
	}
}

func TestExtractTokenFromHeader(t *testing.T) {
	const token = "abc123"
	value, err := ExtractTokenFromHeader("Bearer " + token)
	if err != nil || value != token {
		t.Fatalf("unexpected result %q err=%v", value, err)
	}

	for _, header := range []string{"", "Token " + token, "Bearer"} {
		if _, err := ExtractTokenFromHeader(header); err == nil {
			t.Fatalf("expected error for header %q", header)
		}
	}
}
