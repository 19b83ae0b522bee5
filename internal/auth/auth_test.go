package auth

import (
	"testing"
	"time"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("qweasd2417")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !VerifyPassword("qweasd2417", hash) {
		t.Fatal("expected matching password to verify")
	}
	if VerifyPassword("wrong", hash) {
		t.Fatal("expected mismatched password to fail")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	token, err := m.Generate(42)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	userID, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if userID != 42 {
		t.Fatalf("userID = %d, want 42", userID)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := NewTokenManager("secret-a", time.Hour).Generate(7)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if _, err := NewTokenManager("secret-b", time.Hour).Verify(token); err != ErrInvalidToken {
		t.Fatalf("Verify error = %v, want ErrInvalidToken", err)
	}
}

func TestTokenExpired(t *testing.T) {
	token, err := NewTokenManager("secret", -time.Minute).Generate(7)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if _, err := NewTokenManager("secret", -time.Minute).Verify(token); err != ErrInvalidToken {
		t.Fatalf("Verify error = %v, want ErrInvalidToken", err)
	}
}

func TestTokenGarbage(t *testing.T) {
	if _, err := NewTokenManager("secret", time.Hour).Verify("not-a-token"); err != ErrInvalidToken {
		t.Fatalf("Verify error = %v, want ErrInvalidToken", err)
	}
}
