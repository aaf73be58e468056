package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashUserKey derives a stable storage namespace from a user identifier so
// raw user ids never appear in object keys. Empty ids share the anonymous
// namespace.
func HashUserKey(userID string) string {
	if userID == "" {
		userID = "anonymous"
	}
	sum := sha256.Sum256([]byte(userID))
	return hex.EncodeToString(sum[:8])
}
