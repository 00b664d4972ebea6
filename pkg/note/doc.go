// Package note implements the versioned ANCHOR note format embedded in the
// note field of zero-value Algorand payment transactions. A note carries a
// document fingerprint together with its provenance metadata, pipe-delimited:
//
//	ANCHOR|v1|<64-hex-fingerprint>|<contentID>|<wallet>|<timestampMillis>
//	ANCHOR|v2|<64-hex-fingerprint>|<contentID>|<kind>|<ownerName>|<wallet>|<timestampMillis>
//
// Encoding is total: free-text fields are truncated to their caps and the
// delimiter character is replaced before serialization, so a valid payload
// can never be ambiguous. Decoding is positional per version and tolerates a
// missing wallet segment by substituting the transaction sender.
package note
