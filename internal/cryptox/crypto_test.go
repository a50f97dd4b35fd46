package cryptox

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("secret1", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if hash == "secret1" || !strings.HasPrefix(hash, "$2") {
		t.Fatalf("unexpected hash format: %q", hash)
	}
	if err := ComparePassword(hash, "secret1"); err != nil {
		t.Fatalf("ComparePassword error: %v", err)
	}
}

func TestHashPassword_Salted(t *testing.T) {
	a, err := HashPassword("secret1", bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	b, err := HashPassword("secret1", bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatalf("expected different hashes for the same password")
	}
}

func TestHashPassword_CostFallback(t *testing.T) {
	hash, err := HashPassword("secret1", 99)
	if err != nil {
		t.Fatal(err)
	}
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		t.Fatal(err)
	}
	if cost != bcrypt.DefaultCost {
		t.Fatalf("cost = %d, want %d", cost, bcrypt.DefaultCost)
	}
}

func TestComparePassword_Mismatch(t *testing.T) {
	hash, err := HashPassword("secret1", bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	if err := ComparePassword(hash, "secret2"); !errors.Is(err, ErrMismatch) {
		t.Fatalf("want ErrMismatch, got %v", err)
	}
}

func TestComparePassword_BrokenHash(t *testing.T) {
	err := ComparePassword("not-a-bcrypt-hash", "secret1")
	if err == nil || errors.Is(err, ErrMismatch) {
		t.Fatalf("want non-mismatch error, got %v", err)
	}
}
