package service

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost keeps a single verification in the tens of milliseconds.
const DefaultBcryptCost = 10

// BcryptHasher implements ports.PasswordHasher with bcrypt. The salt is
// generated per hash and embedded in the digest.
//
// Passwords are reduced to base64(SHA-256) before bcrypt so every input fits
// within bcrypt's 72-byte limit regardless of its encoding.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher with the given cost. Out-of-range costs
// fall back to DefaultBcryptCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword(prehash(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest. A malformed digest is
// indistinguishable from a mismatch.
func (h *BcryptHasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), prehash(plaintext)) == nil
}

// prehash yields 44 bytes for any input.
func prehash(plaintext string) []byte {
	sum := sha256.Sum256([]byte(plaintext))
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}
