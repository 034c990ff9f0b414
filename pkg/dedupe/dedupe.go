// Package dedupe computes the content fingerprint used as the dedup key
// for raw events.
package dedupe

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Fingerprint returns the deterministic content hash for an observation.
// Two events with identical (source, url, text) always produce the same
// fingerprint and collapse to one stored record.
func Fingerprint(source, url, text string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s", source, url, text)))
	return hex.EncodeToString(sum[:])
}
