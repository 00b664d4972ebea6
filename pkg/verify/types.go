package verify

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/algocert/anchor-sdk-go/pkg/index"
	"github.com/algocert/anchor-sdk-go/pkg/note"
	"github.com/algocert/anchor-sdk-go/pkg/provider"
)

// Verification outcome classes. Every Verify call resolves to exactly one.
const (
	// ReasonConfirmed means a confirmed ledger transaction carries a note
	// anchoring exactly this fingerprint.
	ReasonConfirmed = "confirmed"

	// ReasonNotFound means neither the index nor the bounded ledger search
	// produced an anchoring transaction.
	ReasonNotFound = "not found"

	// ReasonMismatch means the transaction the index points at does not
	// anchor this fingerprint. The index entry is stale or wrong; the
	// ledger wins.
	ReasonMismatch = "mismatch"

	// ReasonUnconfirmed means an anchor attempt is known but has no
	// confirmed transaction yet.
	ReasonUnconfirmed = "unconfirmed"

	// ReasonProviderError means no provider could answer; the outcome is
	// unknown, not negative.
	ReasonProviderError = "provider error"
)

const (
	// DefaultWindow bounds the slow-path search when no wallet hint
	// narrows it.
	DefaultWindow = 4 * time.Hour

	// HintedWindow is the wider slow-path bound used when a wallet hint
	// keeps the search cheap.
	HintedWindow = 30 * 24 * time.Hour

	// averageRoundSeconds converts a wall-clock window into rounds.
	averageRoundSeconds = 3.3

	searchPageLimit = 100
)

// ClientConfig configures a verification client. Index is optional; without
// it every verification takes the slow path.
type ClientConfig struct {
	Pool   *provider.Pool
	Index  *index.Index
	Logger zerolog.Logger
}

// Result is the outcome of one verification. It is non-nil on every return
// from Verify so callers can switch on Reason even when an error
// accompanies it.
type Result struct {
	// Matches is true only when Reason is ReasonConfirmed.
	Matches bool

	Reason string

	// Record is the decoded note of the anchoring transaction, when one
	// was found.
	Record *note.Record

	// TxID and ConfirmedRound identify the anchoring transaction, when
	// one was found.
	TxID           string
	ConfirmedRound uint64

	// Entry is the index document consulted on the fast path, if any.
	Entry *index.Entry
}

type options struct {
	walletHint string
	window     time.Duration
}

// Option narrows or widens a verification.
type Option func(*options)

// WithWalletHint restricts the slow-path search to transactions sent by the
// given address, which also widens the default window to HintedWindow.
func WithWalletHint(address string) Option {
	return func(o *options) {
		o.walletHint = address
	}
}

// WithWindow overrides how far back the slow-path search looks.
func WithWindow(window time.Duration) Option {
	return func(o *options) {
		o.window = window
	}
}

func resolveOptions(opts []Option) options {
	var resolved options
	for _, opt := range opts {
		opt(&resolved)
	}
	if resolved.window <= 0 {
		if resolved.walletHint != "" {
			resolved.window = HintedWindow
		} else {
			resolved.window = DefaultWindow
		}
	}
	return resolved
}

func windowRounds(window time.Duration) uint64 {
	rounds := uint64(window.Seconds() / averageRoundSeconds)
	if rounds == 0 {
		rounds = 1
	}
	return rounds
}
