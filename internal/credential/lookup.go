package credential

import (
	"crypto/sha256"
	"encoding/hex"
)

// LookupHash returns the SHA-256 hex digest of the normalized token. Unlike
// bcrypt it is deterministic, so invite tokens can be found by hash without
// knowing which record they belong to. The digest still keeps the plaintext
// out of the database.
func LookupHash(raw string) string {
	sum := sha256.Sum256([]byte(Normalize(raw)))
	return hex.EncodeToString(sum[:])
}
