package auth

import (
	"testing"
	"time"

	"github.com/church-content-api/internal/models"
)

func testUser() *models.User {
	return &models.User{
		ID:       "7f0c2d9e-1a3b-4c5d-8e6f-0a1b2c3d4e5f",
		Name:     "Almir",
		Username: "almir",
		Role:     "admin",
		Active:   true,
	}
}

func TestIssuer_IssueAndVerify(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)

	token, err := issuer.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	claims, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if claims.Subject != "7f0c2d9e-1a3b-4c5d-8e6f-0a1b2c3d4e5f" {
		t.Errorf("unexpected subject %q", claims.Subject)
	}
	if claims.Username != "almir" || claims.Name != "Almir" || claims.Role != "admin" {
		t.Errorf("unexpected identity claims: %+v", claims)
	}
	if claims.ExpiresAt == nil || time.Until(claims.ExpiresAt.Time) <= 0 {
		t.Error("expected a future expiry")
	}
}

func TestIssuer_VerifyRejectsWrongSecret(t *testing.T) {
	token, err := NewIssuer("secret-a", time.Hour).Issue(testUser())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := NewIssuer("secret-b", time.Hour).Verify(token); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestIssuer_VerifyRejectsExpiredToken(t *testing.T) {
	token, err := NewIssuer("test-secret", -time.Minute).Issue(testUser())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := NewIssuer("test-secret", time.Hour).Verify(token); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestIssuer_VerifyRejectsGarbage(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)
	for _, tok := range []string{"", "not-a-token", "aaa.bbb.ccc"} {
		if _, err := issuer.Verify(tok); err != ErrInvalidToken {
			t.Errorf("token %q: expected ErrInvalidToken, got %v", tok, err)
		}
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("1515", 4)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "1515" {
		t.Fatal("hash must not equal the plaintext")
	}

	if !VerifyPassword(hash, "1515") {
		t.Error("expected correct password to verify")
	}
	if VerifyPassword(hash, "1516") {
		t.Error("expected wrong password to fail")
	}
	if VerifyPassword("not-a-bcrypt-hash", "1515") {
		t.Error("expected malformed hash to fail")
	}
}
