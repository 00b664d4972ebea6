package provider

import (
	"github.com/algorand/go-algorand-sdk/v2/client/v2/algod"
	"github.com/algorand/go-algorand-sdk/v2/client/v2/indexer"
	"github.com/rs/zerolog"
)

type Role string

const (
	RoleAlgod   Role = "algod"
	RoleIndexer Role = "indexer"
)

// Endpoint is one configured provider node. The pool never mutates an
// endpoint after construction.
type Endpoint struct {
	URL   string
	Token string
	Role  Role
}

// AlgodClient constructs a fresh stateless algod client for the endpoint.
func (e Endpoint) AlgodClient() (*algod.Client, error) {
	return algod.MakeClient(e.URL, e.Token)
}

// IndexerClient constructs a fresh stateless indexer client for the
// endpoint.
func (e Endpoint) IndexerClient() (*indexer.Client, error) {
	return indexer.MakeClient(e.URL, e.Token)
}

type PoolConfig struct {
	AlgodEndpoints   []Endpoint
	IndexerEndpoints []Endpoint
	Logger           zerolog.Logger
}

// Pool holds the configured endpoints per role.
type Pool struct {
	algodEndpoints   []Endpoint
	indexerEndpoints []Endpoint
	logger           zerolog.Logger
}

type EndpointInfo struct {
	URL      string `json:"url"`
	HasToken bool   `json:"has_token"`
}

type PoolInfo struct {
	Algod   []EndpointInfo `json:"algod"`
	Indexer []EndpointInfo `json:"indexer"`
}

type EndpointHealth struct {
	URL        string `json:"url"`
	Healthy    bool   `json:"healthy"`
	Error      string `json:"error,omitempty"`
	LastRound  uint64 `json:"last_round,omitempty"`
	CatchingUp bool   `json:"catching_up,omitempty"`
}

type DiagnosisReport struct {
	Algod   []EndpointHealth `json:"algod"`
	Indexer []EndpointHealth `json:"indexer"`
}
