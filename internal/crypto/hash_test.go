package crypto

import "testing"

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword() unexpected error: %v", err)
	}
	if hash == "" {
		t.Fatal("HashPassword() returned empty string")
	}
	if hash == "correct horse battery staple" {
		t.Fatal("HashPassword() returned plaintext")
	}
}

func TestHashPasswordSalted(t *testing.T) {
	h1, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("HashPassword() unexpected error: %v", err)
	}
	h2, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("HashPassword() unexpected error: %v", err)
	}
	if h1 == h2 {
		t.Error("two hashes of the same password should differ")
	}
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("pw1")
	if err != nil {
		t.Fatalf("HashPassword() unexpected error: %v", err)
	}

	if !VerifyPassword("pw1", hash) {
		t.Error("VerifyPassword() = false for the correct password")
	}
	if VerifyPassword("wrong", hash) {
		t.Error("VerifyPassword() = true for a wrong password")
	}
}

func TestVerifyPasswordBadHash(t *testing.T) {
	if VerifyPassword("pw1", "not-a-bcrypt-hash") {
		t.Error("VerifyPassword() = true for a malformed hash")
	}
}
