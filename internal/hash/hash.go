// Package hash anonymizes account identifiers before they leave the service.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
)

// String returns the lowercase hex SHA-256 digest of s. IBANs are hashed with
// it so the consuming budget software can match accounts without ever seeing
// the real identifier.
func String(s string) string {
	digest := sha256.Sum256([]byte(s))
	return hex.EncodeToString(digest[:])
}
