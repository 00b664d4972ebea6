// Package verify checks whether a document fingerprint was anchored on the
// ledger. The fast path consults the metadata index for the anchoring
// transaction ID and confirms it against the ledger note; when the index has
// no entry (or no index is configured) the slow path searches the indexer by
// note prefix over a bounded round window. The ledger note is always the
// authority: an index entry alone never produces a positive result.
package verify
