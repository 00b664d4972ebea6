package index

import (
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultRoot       = "/cert-index"
	DefaultShardWidth = 2
	DefaultCacheTTL   = 120 * time.Second
)

type Config struct {
	// StoreURLs lists the IPFS HTTP API endpoints serving the index, in no
	// particular order; the writer is elected by probing them all.
	StoreURLs []string

	// Root is the MFS directory the index lives under.
	Root string

	// ShardWidth is the number of leading fingerprint characters used as
	// the by-hash shard directory name.
	ShardWidth int

	// IPNSKey, when set, is the name of the IPNS key the root is
	// republished under after each publish.
	IPNSKey string

	// RootCID pins readers to a fixed snapshot instead of the live tree.
	RootCID string

	// CacheTTL bounds how long a resolved root CID is reused.
	CacheTTL time.Duration

	Logger zerolog.Logger
}

// Entry is the by-fingerprint index document. Created once when an anchor
// confirms; never mutated or deleted afterwards.
type Entry struct {
	Version     string `json:"version"`
	Fingerprint string `json:"fingerprint"`
	ContentID   string `json:"content_id"`
	TxID        string `json:"txid"`
	Wallet      string `json:"wallet,omitempty"`
	Timestamp   string `json:"timestamp"`
	Kind        string `json:"kind,omitempty"`
	Owner       string `json:"owner,omitempty"`
}

// OwnerItem is one anchored document in an owner's list.
type OwnerItem struct {
	Fingerprint string `json:"fingerprint"`
	TxID        string `json:"txid"`
	ContentID   string `json:"content_id"`
	Timestamp   string `json:"timestamp"`
	Kind        string `json:"kind,omitempty"`
}

// OwnerList groups an owner's anchored documents, newest first. Append
// only; an item is added only when its fingerprint is not already present.
type OwnerList struct {
	Owner string      `json:"owner"`
	Items []OwnerItem `json:"items"`
}

type PublishParams struct {
	FingerprintHex string
	ContentID      string
	TxID           string
	Wallet         string
	Timestamp      time.Time
	Kind           string
	OwnerName      string
	Version        string
}
