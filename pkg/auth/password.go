package auth

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	BcryptCost     = 12 // work factor; bcrypt generates a fresh salt per call
	MinPasswordLen = 8
)

// HashPassword produces a salted one-way hash of the plaintext.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// CheckPassword reports whether the plaintext matches the stored hash.
// Malformed hashes fail closed: the answer is false, never a panic.
func CheckPassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}

// ValidatePassword is the complexity gate: at least MinPasswordLen runes with
// one uppercase letter, one lowercase letter, one digit, and one rune that is
// neither letter nor digit.
func ValidatePassword(password string) bool {
	if utf8.RuneCountInString(password) < MinPasswordLen {
		return false
	}

	hasUpper := false
	hasLower := false
	hasDigit := false
	hasSymbol := false

	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case !unicode.IsLetter(r):
			hasSymbol = true
		}
	}

	return hasUpper && hasLower && hasDigit && hasSymbol
}

// GenerateSecurityStamp returns a fresh opaque stamp. Rotating the stamp on
// login and password change invalidates anything bound to the old value.
func GenerateSecurityStamp() string {
	return uuid.NewString()
}
