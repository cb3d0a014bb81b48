package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("admin123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "admin123" {
		t.Fatalf("hash must not equal plaintext")
	}
	if !VerifyPassword(hash, "admin123") {
		t.Fatalf("expected match")
	}
	if VerifyPassword(hash, "admin124") {
		t.Fatalf("unexpected match for wrong password")
	}
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	if VerifyPassword("", "admin123") {
		t.Fatalf("empty hash must not verify")
	}
	if VerifyPassword("not-a-bcrypt-hash", "admin123") {
		t.Fatalf("malformed hash must be treated as mismatch")
	}
}

func TestDummyHashMatchesProductionCost(t *testing.T) {
	cost, err := bcrypt.Cost([]byte(dummyHash))
	if err != nil {
		t.Fatalf("stand-in hash must be well formed: %v", err)
	}
	if cost != hashCost {
		t.Fatalf("stand-in hash cost = %d, want %d", cost, hashCost)
	}
}

func TestHashPasswordEmpty(t *testing.T) {
	if _, err := HashPassword(""); err == nil {
		t.Fatalf("expected error for empty password")
	}
}
