// Package index maintains the replicated certificate metadata index: a
// sharded tree of JSON documents on IPFS MFS, keyed by document fingerprint
// and by normalized owner name, periodically snapshotted to a content
// address and optionally republished under a stable IPNS name.
//
// Layout under the configured MFS root:
//
//	/by-hash/<shard>/<fingerprint>.json   one Entry per anchored document
//	/by-owner/<letter>/<OWNER NAME>.json  newest-first OwnerList per owner
//
// The store may be served by several independently operated, eventually
// consistent IPFS nodes. Each process elects a single writer node (first
// node to answer a concurrent probe) and sends all publishes to it; lookups
// prefer the same node so a process observes its own writes. Writes go to a
// staging path and are moved into place, so a reader never sees a
// half-written file.
package index
