package note

type Version string

const (
	VersionV1 Version = "v1"
	VersionV2 Version = "v2"
)

const (
	// Tag is the literal leading segment of every anchoring note.
	Tag = "ANCHOR"

	// Delimiter separates note segments and is forbidden inside free text.
	Delimiter = "|"

	MaxKindLength      = 64
	MaxOwnerNameLength = 160
)

// Record is one decoded anchoring note. Kind and OwnerName are only present
// on v2 records.
type Record struct {
	Version         Version
	FingerprintHex  string
	ContentID       string
	Kind            string
	OwnerName       string
	WalletAddress   string
	TimestampMillis int64
}
