package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"goalspace-backend/pkg/models"
)

func TestGenerateTokenPairRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret")

	access, refresh, expiresAt, err := svc.GenerateTokenPair("user-1", "u@example.com")
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}
	if access == "" || refresh == "" || access == refresh {
		t.Fatal("expected two distinct tokens")
	}
	if expiresAt <= time.Now().Unix() {
		t.Errorf("access expiry %d is not in the future", expiresAt)
	}

	claims, err := svc.ValidateToken(access)
	if err != nil {
		t.Fatalf("validate access: %v", err)
	}
	if claims.UserID != "user-1" || claims.Email != "u@example.com" {
		t.Errorf("claims = %+v", claims)
	}
	if claims.Type != "access" {
		t.Errorf("access token type = %q", claims.Type)
	}

	refreshClaims, err := svc.ValidateRefreshToken(refresh)
	if err != nil {
		t.Fatalf("validate refresh: %v", err)
	}
	if refreshClaims.Type != "refresh" {
		t.Errorf("refresh token type = %q", refreshClaims.Type)
	}
}

func TestValidateRefreshTokenRejectsAccessToken(t *testing.T) {
	svc := NewJWTService("test-secret")

	access, _, _, err := svc.GenerateTokenPair("user-1", "u@example.com")
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}

	if _, err := svc.ValidateRefreshToken(access); err == nil {
		t.Error("an access token must not pass refresh validation")
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	issued := NewJWTService("secret-a")
	verifier := NewJWTService("secret-b")

	access, _, _, err := issued.GenerateTokenPair("user-1", "u@example.com")
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}

	if _, err := verifier.ValidateToken(access); err == nil {
		t.Error("token signed with a different secret must be rejected")
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	secret := "test-secret"
	svc := NewJWTService(secret)

	now := time.Now()
	claims := &models.TokenClaims{
		UserID: "user-1",
		Email:  "u@example.com",
		Type:   "access",
		Exp:    now.Add(-time.Minute).Unix(),
		Iat:    now.Add(-16 * time.Minute).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := svc.ValidateToken(token); err == nil {
		t.Error("expired token must be rejected")
	}
}

func TestGenerateAccessTokenIsValidatable(t *testing.T) {
	svc := NewJWTService("test-secret")

	access, expiresAt, err := svc.GenerateAccessToken("user-9", "nine@example.com")
	if err != nil {
		t.Fatalf("generate access: %v", err)
	}
	if expiresAt <= time.Now().Unix() {
		t.Errorf("expiry %d is not in the future", expiresAt)
	}

	claims, err := svc.ValidateToken(access)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != "user-9" || claims.Type != "access" {
		t.Errorf("claims = %+v", claims)
	}
}
