// The AlgoCert Anchor SDK for Go anchors document fingerprints on the
// Algorand public ledger and maintains a sharded, content-addressed metadata
// index on IPFS so any party can later prove that an exact file was anchored
// at a given time by a given wallet, without access to a private database.
//
// # Packages
//
//   - provider: multi-endpoint algod/indexer pools with ordered failover and
//     a sticky session for round-sensitive polling
//   - note: the versioned ANCHOR note codec embedded in zero-value payment
//     transactions (v1 and v2 record shapes)
//   - anchor: build, sign, broadcast, and confirm anchoring transactions
//   - index: the sharded by-hash/by-owner JSON index on IPFS MFS, published
//     under a stable IPNS name
//   - verify: fingerprint verification against the index and the ledger
//   - shared: environment configuration, signer loading, and logging
//
// # Installation
//
//	go get github.com/algocert/anchor-sdk-go@latest
package anchor_sdk_go
