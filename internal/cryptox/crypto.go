// Package cryptox holds the one-way secret primitives used by the gateway:
// argon2id hashes for collection PINs and bcrypt hashes for account
// passwords. Plaintext secrets never leave the process that received them.
package cryptox

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexedwards/argon2id"
	"golang.org/x/crypto/bcrypt"
)

// PinParams are the argon2id parameters used for new PIN hashes. Tests
// lower them to keep hashing fast.
var PinParams = argon2id.DefaultParams

// PasswordCost is the bcrypt cost used for new password hashes.
var PasswordCost = bcrypt.DefaultCost

// HashPin returns an encoded argon2id hash of pin.
func HashPin(pin string) (string, error) {
	if strings.TrimSpace(pin) == "" {
		return "", errors.New("empty pin")
	}
	hash, err := argon2id.CreateHash(pin, PinParams)
	if err != nil {
		return "", fmt.Errorf("hash pin: %w", err)
	}
	return hash, nil
}

// ComparePin reports whether candidate matches the stored argon2id hash.
// A malformed hash is an error, not a mismatch.
func ComparePin(hash string, candidate string) (bool, error) {
	match, err := argon2id.ComparePasswordAndHash(candidate, hash)
	if err != nil {
		return false, fmt.Errorf("compare pin: %w", err)
	}
	return match, nil
}

// HashPassword returns a bcrypt hash of password.
func HashPassword(password []byte) ([]byte, error) {
	return bcrypt.GenerateFromPassword(password, PasswordCost)
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash []byte, password []byte) bool {
	return bcrypt.CompareHashAndPassword(hash, password) == nil
}
