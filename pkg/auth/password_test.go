package auth

import (
	"strings"
	"testing"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{name: "valid strong password", password: "Abcdef1!", want: true},
		{name: "valid with symbols", password: "MyP@ssw0rd!", want: true},
		{name: "too short", password: "Ab1!xyz", want: false},
		{name: "missing uppercase", password: "securepass@123", want: false},
		{name: "missing lowercase", password: "SECUREPASS@123", want: false},
		{name: "missing digit", password: "SecurePass@xyz", want: false},
		{name: "missing symbol", password: "SecurePass123", want: false},
		{name: "empty", password: "", want: false},
		{name: "whitespace counts as symbol", password: "Secure Pass123", want: true},
		{name: "unicode letters only", password: "Пароль12345", want: false},
		{name: "multibyte short of eight characters", password: "Пп1!Пп", want: false},
		{name: "multibyte at eight characters", password: "Пп1!Пп1!", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidatePassword(tt.password); got != tt.want {
				t.Errorf("ValidatePassword(%q) = %v, want %v", tt.password, got, tt.want)
			}
		})
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	password := "SecureP@ss123"

	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if hash == password {
		t.Error("hash should not equal the plaintext")
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("expected a bcrypt hash, got: %s", hash)
	}

	if !CheckPassword(hash, password) {
		t.Error("CheckPassword should accept the original plaintext")
	}
	if CheckPassword(hash, "WrongP@ss123") {
		t.Error("CheckPassword should reject a different plaintext")
	}
}

func TestHashPasswordUniqueSalts(t *testing.T) {
	password := "SecureP@ss123"

	first, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	second, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if first == second {
		t.Error("two hashes of the same password should differ (random salt per call)")
	}
}

func TestHashPasswordEmpty(t *testing.T) {
	if _, err := HashPassword(""); err == nil {
		t.Error("expected error for empty password")
	}
}

func TestCheckPasswordMalformedHash(t *testing.T) {
	// Fails closed rather than panicking on garbage input.
	if CheckPassword("not-a-real-hash", "anything") {
		t.Error("malformed hash should never verify")
	}
	if CheckPassword("", "anything") {
		t.Error("empty hash should never verify")
	}
}

func TestGenerateSecurityStamp(t *testing.T) {
	first := GenerateSecurityStamp()
	second := GenerateSecurityStamp()

	if first == "" || second == "" {
		t.Fatal("stamp should not be empty")
	}
	if first == second {
		t.Error("consecutive stamps should differ")
	}
}
