// Package secrets wraps the one-way hashing primitive used for login
// secrets. Raw and hashed material never leaves this package except as the
// stored hash string, and is never logged.
package secrets

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Cost is the bcrypt work factor for newly stored secrets.
const Cost = bcrypt.DefaultCost

// dummyHash is a valid bcrypt hash of an unguessable value. Verify runs
// against it when no real hash exists so that a lookup miss costs the same
// as a wrong secret.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Hash derives a salted one-way hash for storage.
func Hash(raw string) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("secret must not be empty")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(raw), Cost)
	if err != nil {
		return "", fmt.Errorf("hash secret: %w", err)
	}
	return string(h), nil
}

// Verify recomputes and compares. It never compares stored material by
// string equality.
func Verify(hash, raw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)) == nil
}

// VerifyDummy burns a bcrypt comparison against a throwaway hash. Callers
// use it to equalize the cost of "unknown login" and "wrong secret" paths.
func VerifyDummy(raw string) {
	_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(raw))
}
