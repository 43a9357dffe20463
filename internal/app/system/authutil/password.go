// Package authutil holds password rules and hashing for admin accounts.
package authutil

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 6
	MaxPasswordLength = 128

	// bcryptCost matches the cost used for all stored admin hashes.
	bcryptCost = 12
)

var (
	ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrPasswordTooLong  = fmt.Errorf("password must be at most %d characters", MaxPasswordLength)
	ErrPasswordCommon   = errors.New("password is too common")
)

var commonPasswords = map[string]struct{}{
	"123456":    {},
	"1234567":   {},
	"12345678":  {},
	"123456789": {},
	"password":  {},
	"qwerty":    {},
	"abc123":    {},
	"iloveyou":  {},
	"letmein":   {},
	"football":  {},
	"welcome":   {},
	"admin123":  {},
	"monkey":    {},
	"111111":    {},
}

// ValidatePassword checks length bounds and rejects well-known passwords.
func ValidatePassword(pw string) error {
	if len(pw) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(pw) > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	if _, bad := commonPasswords[strings.ToLower(pw)]; bad {
		return ErrPasswordCommon
	}
	return nil
}

// PasswordRules is a human-readable summary of ValidatePassword.
func PasswordRules() string {
	return fmt.Sprintf("Passwords must be %d to %d characters and not a common password.", MinPasswordLength, MaxPasswordLength)
}

// HashPassword returns a bcrypt hash of pw.
func HashPassword(pw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pw), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether pw matches hash. A malformed hash never matches.
func CheckPassword(pw, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}
