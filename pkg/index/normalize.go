package index

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeOwner canonicalizes an owner name for indexing: diacritics
// stripped, whitespace collapsed, uppercased. "María  lópez" and
// "MARIA LOPEZ" index identically.
func NormalizeOwner(name string) string {
	if strings.TrimSpace(name) == "" {
		return ""
	}

	stripped, _, err := transform.String(diacriticStripper, name)
	if err != nil {
		stripped = name
	}

	return strings.ToUpper(strings.Join(strings.Fields(stripped), " "))
}

// ShardKey returns the by-hash shard directory for a fingerprint: its first
// width hex characters, zero-padded when the cleaned value is shorter.
func ShardKey(hexLike string, width int) string {
	if width <= 0 {
		width = DefaultShardWidth
	}

	var builder strings.Builder
	for _, character := range strings.ToLower(hexLike) {
		if (character >= '0' && character <= '9') || (character >= 'a' && character <= 'f') {
			builder.WriteRune(character)
		}
	}

	clean := builder.String()
	if len(clean) >= width {
		return clean[:width]
	}
	return clean + strings.Repeat("0", width-len(clean))
}

// OwnerShardKey returns the by-owner shard directory: the first letter of
// the normalized name, or "Z" when no letter survives normalization.
func OwnerShardKey(ownerNormalized string) string {
	for _, character := range ownerNormalized {
		if character >= 'A' && character <= 'Z' {
			return string(character)
		}
	}
	return "Z"
}
