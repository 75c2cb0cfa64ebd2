package auth

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashPassword returns the hex-encoded SHA-256 digest of the password.
// This is an unsalted single-pass hash and a known security deficiency;
// existing stored credentials depend on the exact scheme, so changing it
// requires a credential migration first.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// CheckPassword reports whether the password hashes to the stored digest.
func CheckPassword(password, passwordHash string) bool {
	return HashPassword(password) == passwordHash
}
