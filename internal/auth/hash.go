package auth

import (
	"crypto/sha256"
	"encoding/base64"
)

// HashToken derives the deterministic lookup key for a raw refresh token.
// Only this hash is ever persisted.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
