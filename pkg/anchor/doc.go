// Package anchor builds, signs, and broadcasts the zero-value Algorand
// payment transactions that carry anchoring notes, then waits for
// confirmation.
//
// Broadcast and parameter fetches run through the provider pool's failover;
// confirmation polls a sticky session so the advance-by-one-round loop
// observes a single provider's view of chain height. When the wait window
// elapses, the client tries the indexer as a second confirmation path before
// returning a pending (not failed) result; an accepted transaction may still
// confirm, and the caller re-polls with WaitForConfirmation.
package anchor
