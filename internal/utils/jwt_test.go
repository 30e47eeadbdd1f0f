package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateAndParseJWT(t *testing.T) {
	token, err := GenerateJWT(42, "test-secret")
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	claims, err := ParseJWT(token, "test-secret")
	if err != nil {
		t.Fatalf("ParseJWT: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
}

func TestParseJWTWrongSecret(t *testing.T) {
	token, _ := GenerateJWT(42, "test-secret")
	if _, err := ParseJWT(token, "other-secret"); err == nil {
		t.Error("expected parse with the wrong secret to fail")
	}
}

func TestParseJWTWrongIssuer(t *testing.T) {
	// A token minted elsewhere with the right secret is still rejected
	claims := Claims{
		UserID: 42,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("signing foreign token: %v", err)
	}
	if _, err := ParseJWT(foreign, "test-secret"); err == nil {
		t.Error("expected parse of a foreign-issuer token to fail")
	}
}

func TestParseJWTExpired(t *testing.T) {
	claims := Claims{
		UserID: 42,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "lorefit",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("signing expired token: %v", err)
	}
	if _, err := ParseJWT(expired, "test-secret"); err == nil {
		t.Error("expected parse of an expired token to fail")
	}
}
