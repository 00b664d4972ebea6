package note

import (
	"fmt"
	"regexp"
	"strings"
)

var fingerprintPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// NormalizeFingerprint lowercases and trims a fingerprint for comparison
// and storage.
func NormalizeFingerprint(fingerprintHex string) string {
	return strings.ToLower(strings.TrimSpace(fingerprintHex))
}

// ValidateFingerprint checks that the value is a SHA-256 digest rendered as
// exactly 64 hexadecimal characters.
func ValidateFingerprint(fingerprintHex string) error {
	normalized := NormalizeFingerprint(fingerprintHex)
	if normalized == "" {
		return fmt.Errorf("fingerprint is required")
	}
	if !fingerprintPattern.MatchString(normalized) {
		return fmt.Errorf("fingerprint must be 64 hex characters, got %d", len(normalized))
	}
	return nil
}
