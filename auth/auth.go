// Package auth is the credential collaborator: salted, slow-by-design
// password hashing.
package auth

import "golang.org/x/crypto/bcrypt"

// Hash derives a digest from a secret.
func Hash(secret string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
}

// Verify reports whether secret matches digest.
func Verify(secret string, digest []byte) bool {
	return bcrypt.CompareHashAndPassword(digest, []byte(secret)) == nil
}
