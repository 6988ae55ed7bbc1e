package auth

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// VerifyPIN checks a submitted step-up PIN against the configured secret.
// The secret may be a bcrypt hash (recommended) or a plain value, compared in
// constant time either way. An empty secret never verifies.
func VerifyPIN(secret, pin string) bool {
	if secret == "" || pin == "" {
		return false
	}
	if strings.HasPrefix(secret, "$2a$") || strings.HasPrefix(secret, "$2b$") || strings.HasPrefix(secret, "$2y$") {
		return bcrypt.CompareHashAndPassword([]byte(secret), []byte(pin)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(pin)) == 1
}
