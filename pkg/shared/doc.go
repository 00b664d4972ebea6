// Package shared provides the environment plumbing used across the SDK:
// .env discovery and loading, endpoint list parsing helpers, the anchoring
// signer loaded from a 25-word mnemonic, and the zerolog constructor the
// examples and services log through.
package shared
