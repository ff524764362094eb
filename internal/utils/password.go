package utils

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns bcrypt hash using the given cost.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares bcrypt hash and plain password.
// A malformed hash simply fails verification.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// HashRefreshRaw hashes a raw refresh token for storage.  The token is
// SHA-256-digested first because bcrypt rejects inputs longer than 72
// bytes and a serialized JWT always is; bcrypt over the digest keeps
// the slow salted hash so a database leak does not expose usable tokens.
func HashRefreshRaw(raw string, cost int) (string, error) {
	return HashPassword(digestHex(raw), cost)
}

// CompareRefreshRaw reports whether the raw refresh token matches the
// stored hash produced by HashRefreshRaw.
func CompareRefreshRaw(hash, raw string) bool {
	return VerifyPassword(hash, digestHex(raw))
}

func digestHex(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
