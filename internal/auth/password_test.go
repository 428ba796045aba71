package auth

import (
	"strings"
	"testing"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("my-password")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !strings.HasPrefix(hash, "$2a$12$") {
		t.Fatalf("expected bcrypt cost-12 hash, got %q", hash)
	}
	if !VerifyPassword("my-password", hash) {
		t.Fatalf("expected hash to verify against original password")
	}
	if VerifyPassword("other-password", hash) {
		t.Fatalf("expected different password to fail verification")
	}
}

func TestHashPasswordSaltsFreshly(t *testing.T) {
	first, err := HashPassword("my-password")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	second, err := HashPassword("my-password")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct hashes for the same input, both were %q", first)
	}
	if !VerifyPassword("my-password", first) || !VerifyPassword("my-password", second) {
		t.Fatalf("expected both salted hashes to verify")
	}
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	if _, err := HashPassword(""); err == nil {
		t.Fatalf("expected error for empty password")
	}
}

func TestVerifyPasswordFailsClosedOnMalformedHash(t *testing.T) {
	for _, stored := range []string{"", "not-a-hash", "$2a$xx$garbage", "plaintext-password"} {
		if VerifyPassword("anything", stored) {
			t.Fatalf("expected malformed hash %q to verify as false", stored)
		}
	}
}
