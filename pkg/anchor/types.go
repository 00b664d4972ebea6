package anchor

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/algocert/anchor-sdk-go/pkg/note"
	"github.com/algocert/anchor-sdk-go/pkg/provider"
	"github.com/algocert/anchor-sdk-go/pkg/shared"
)

// ConfirmationPath records which lookup confirmed a transaction. It is
// diagnostic only; a confirmation is equally valid from either path.
type ConfirmationPath string

const (
	PathNone    ConfirmationPath = ""
	PathNode    ConfirmationPath = "node"
	PathIndexer ConfirmationPath = "indexer"
)

// DefaultConfirmTimeout bounds the confirmation wait when the config does
// not set one.
const DefaultConfirmTimeout = 20 * time.Second

// validityWindowRounds caps how many rounds a built transaction stays
// valid. A short cap keeps a stale broadcast from lingering in the pool.
const validityWindowRounds = 1000

type ClientConfig struct {
	Pool           *provider.Pool
	Signer         shared.Signer
	Logger         zerolog.Logger
	ConfirmTimeout time.Duration
}

type AnchorParams struct {
	// Recipient receives the zero-value transfer; usually the wallet of
	// the document owner.
	Recipient      string
	FingerprintHex string
	ContentID      string

	// Kind and OwnerName select the v2 note shape. Both empty selects v1;
	// setting only one is a validation error.
	Kind      string
	OwnerName string
}

type AnchorResult struct {
	TxID           string           `json:"txid"`
	ConfirmedRound uint64           `json:"confirmed_round,omitempty"`
	Pending        bool             `json:"pending,omitempty"`
	ConfirmedVia   ConfirmationPath `json:"confirmed_via,omitempty"`
	Record         note.Record      `json:"-"`
}

// Confirmation is the outcome of one bounded confirmation wait.
type Confirmation struct {
	Round   uint64
	Path    ConfirmationPath
	Pending bool
}
