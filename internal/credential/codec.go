// Package credential covers hashing, verification and generation of the
// secrets the portal issues: account access keys and one-time enlistment
// tokens. Only hashed forms are ever persisted.
package credential

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used when no explicit cost is
// configured.
const DefaultCost = 12

// Normalize canonicalizes a manually transcribed secret: surrounding
// whitespace is dropped and letters are upper-cased, so verification is
// insensitive to incidental case or whitespace differences.
func Normalize(secret string) string {
	return strings.ToUpper(strings.TrimSpace(secret))
}

// Hash returns the bcrypt hash of the normalized secret using the given
// cost. Costs outside bcrypt's valid range fall back to DefaultCost.
func Hash(secret string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(Normalize(secret)), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether candidate matches stored. Two stored forms are
// accepted to allow migration: a bcrypt hash (recognized by its "$2" format
// prefix) and a legacy plaintext value. The legacy branch compares in
// constant time; it exists only for records written before hashing was
// introduced and must not be used for new writes.
func Verify(candidate, stored string) bool {
	if stored == "" {
		return false
	}
	norm := Normalize(candidate)
	if norm == "" {
		return false
	}
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(norm)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(norm)) == 1
}
