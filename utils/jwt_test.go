package utils

import (
	"testing"
	"time"
)

func TestJWT_RoundTrip(t *testing.T) {
	secret := []byte("test-secret")
	token, issued, err := GenerateJWT(secret, 42, "minji@example.com", time.Hour, time.Now())
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	claims, err := ParseJWT(secret, token)
	if err != nil {
		t.Fatalf("ParseJWT: %v", err)
	}
	id, err := claims.UserID()
	if err != nil || id != 42 {
		t.Fatalf("UserID = %d, %v", id, err)
	}
	if claims.Email != "minji@example.com" || claims.ID != issued.ID || claims.ID == "" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestJWT_Rejects(t *testing.T) {
	secret := []byte("test-secret")
	token, _, err := GenerateJWT(secret, 42, "a@b.c", time.Hour, time.Now())
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	if _, err := ParseJWT([]byte("other-secret"), token); err == nil {
		t.Error("token signed with another secret was accepted")
	}

	expired, _, err := GenerateJWT(secret, 42, "a@b.c", time.Minute, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	if _, err := ParseJWT(secret, expired); err == nil {
		t.Error("expired token was accepted")
	}
	if _, err := ParseJWT(secret, "not-a-token"); err == nil {
		t.Error("garbage was accepted")
	}
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !CheckPasswordHash("correct horse", hash) || CheckPasswordHash("wrong", hash) {
		t.Fatal("password check mismatch")
	}
}
