package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/poolmate/poolmate-backend/internal/config"
	"github.com/poolmate/poolmate-backend/internal/models"
)

func TestAccessTokenClaims(t *testing.T) {
	cfg := &config.Config{
		JWTSecret:       "test-secret",
		JWTAccessExpiry: 15 * time.Minute,
	}
	svc := &AuthService{cfg: cfg}

	user := &models.User{
		ID:            uuid.New(),
		Email:         "driver@example.com",
		EmailVerified: true,
	}

	signed, err := svc.generateAccessToken(user)
	if err != nil {
		t.Fatalf("generateAccessToken: %v", err)
	}

	parsed, err := jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token failed to parse: %v", err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatalf("claims are %T, want MapClaims", parsed.Claims)
	}
	if claims["sub"] != user.ID.String() {
		t.Fatalf("sub = %v, want %s", claims["sub"], user.ID)
	}
	if claims["email"] != user.Email {
		t.Fatalf("email = %v, want %s", claims["email"], user.Email)
	}
	if verified, _ := claims["email_verified"].(bool); !verified {
		t.Fatal("email_verified claim should carry the account flag")
	}
}

func TestAccessTokenRejectsWrongSecret(t *testing.T) {
	svc := &AuthService{cfg: &config.Config{
		JWTSecret:       "test-secret",
		JWTAccessExpiry: time.Minute,
	}}
	signed, err := svc.generateAccessToken(&models.User{ID: uuid.New()})
	if err != nil {
		t.Fatalf("generateAccessToken: %v", err)
	}

	_, err = jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		return []byte("other-secret"), nil
	})
	if err == nil {
		t.Fatal("token signed with one secret must not verify under another")
	}
}

func TestHashToken(t *testing.T) {
	a := hashToken("some-refresh-token")
	if a != hashToken("some-refresh-token") {
		t.Fatal("hashToken must be deterministic")
	}
	if a == hashToken("another-token") {
		t.Fatal("different tokens must not collide")
	}
	if len(a) != 64 {
		t.Fatalf("hash length = %d, want 64 hex chars", len(a))
	}
}

func TestRandomTokenUnique(t *testing.T) {
	a, err := randomToken()
	if err != nil {
		t.Fatalf("randomToken: %v", err)
	}
	b, err := randomToken()
	if err != nil {
		t.Fatalf("randomToken: %v", err)
	}
	if a == b {
		t.Fatal("two generated tokens should never match")
	}
}
