package utils

import "testing"

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("password123", 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "password123" {
		t.Fatal("hash must not equal the plain password")
	}
	if !VerifyPassword(hash, "password123") {
		t.Fatal("correct password rejected")
	}
	if VerifyPassword(hash, "password124") {
		t.Fatal("wrong password accepted")
	}
}

func TestHashPasswordDistinctSalts(t *testing.T) {
	a, err := HashPassword("password123", 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	b, err := HashPassword("password123", 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if a == b {
		t.Fatal("two hashes of the same password must differ by salt")
	}
}
