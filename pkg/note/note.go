package note

import (
	"fmt"
	"strconv"
	"strings"
)

// Encode serializes a record into note bytes. It never fails: free-text
// fields are truncated to their caps and embedded delimiter characters are
// replaced with spaces, and the fingerprint is lowercased.
func Encode(record Record) []byte {
	fingerprint := strings.ToLower(strings.TrimSpace(record.FingerprintHex))
	timestamp := strconv.FormatInt(record.TimestampMillis, 10)

	segments := []string{Tag, string(versionOrDefault(record.Version)), fingerprint, sanitize(record.ContentID, 0)}
	if versionOrDefault(record.Version) == VersionV2 {
		segments = append(segments,
			sanitize(record.Kind, MaxKindLength),
			sanitize(record.OwnerName, MaxOwnerNameLength),
		)
	}
	segments = append(segments, strings.TrimSpace(record.WalletAddress), timestamp)

	return []byte(strings.Join(segments, Delimiter))
}

// Decode parses note bytes into a record. It returns nil unless the payload
// starts with the literal tag followed by a known version. A missing wallet
// segment is substituted with fallbackWallet, which callers should set to
// the transaction sender when it is known.
func Decode(raw []byte, fallbackWallet string) *Record {
	payload := string(raw)
	if !strings.HasPrefix(payload, Tag+Delimiter) {
		return nil
	}

	parts := strings.Split(payload, Delimiter)
	if len(parts) < 3 {
		return nil
	}

	switch Version(parts[1]) {
	case VersionV1:
		return decodeV1(parts, fallbackWallet)
	case VersionV2:
		return decodeV2(parts, fallbackWallet)
	default:
		return nil
	}
}

// Prefix returns the note bytes every record of the given version starts
// with, suitable for indexer note-prefix searches.
func Prefix(version Version) []byte {
	return []byte(Tag + Delimiter + string(version) + Delimiter)
}

// FingerprintPrefix extends Prefix with a specific fingerprint so a search
// matches only notes anchoring that document.
func FingerprintPrefix(version Version, fingerprintHex string) []byte {
	return []byte(fmt.Sprintf("%s%s%s%s%s%s",
		Tag, Delimiter, version, Delimiter, strings.ToLower(strings.TrimSpace(fingerprintHex)), Delimiter))
}

func decodeV1(parts []string, fallbackWallet string) *Record {
	// ANCHOR|v1|fp|cid|wallet|ts, tolerating an absent wallet segment and
	// ignoring any trailing segments beyond the expected count.
	if len(parts) < 5 {
		return nil
	}

	record := &Record{
		Version:        VersionV1,
		FingerprintHex: strings.ToLower(parts[2]),
		ContentID:      parts[3],
	}

	if len(parts) == 5 {
		record.WalletAddress = fallbackWallet
		record.TimestampMillis = parseMillis(parts[4])
		return record
	}

	record.WalletAddress = parts[4]
	record.TimestampMillis = parseMillis(parts[5])
	return record
}

func decodeV2(parts []string, fallbackWallet string) *Record {
	// ANCHOR|v2|fp|cid|kind|owner|wallet|ts, tolerating an absent wallet.
	if len(parts) < 7 {
		return nil
	}

	record := &Record{
		Version:        VersionV2,
		FingerprintHex: strings.ToLower(parts[2]),
		ContentID:      parts[3],
		Kind:           parts[4],
		OwnerName:      parts[5],
	}

	if len(parts) == 7 {
		record.WalletAddress = fallbackWallet
		record.TimestampMillis = parseMillis(parts[6])
		return record
	}

	record.WalletAddress = parts[6]
	record.TimestampMillis = parseMillis(parts[7])
	return record
}

func parseMillis(value string) int64 {
	millis, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0
	}
	return millis
}

func sanitize(value string, maxLength int) string {
	cleaned := strings.TrimSpace(strings.ReplaceAll(value, Delimiter, " "))
	if maxLength > 0 && len(cleaned) > maxLength {
		cleaned = cleaned[:maxLength]
	}
	return cleaned
}

func versionOrDefault(version Version) Version {
	if version == VersionV2 {
		return VersionV2
	}
	return VersionV1
}
