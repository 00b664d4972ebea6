// Package provider manages the ordered lists of algod and indexer endpoints
// the SDK talks to, and the two access disciplines built on top of them:
//
//   - failover: run an operation against each endpoint of a role in
//     configured order until one succeeds (WithAlgod, WithIndexer). Used for
//     stateless reads and writes such as parameter fetches, broadcasts, and
//     transaction lookups.
//   - sticky session: pin a single healthy algod client across a multi-step
//     operation (Session). Confirmation polling advances the chain round by
//     round and must observe one provider's view of chain height; the
//     session re-elects a provider only after a failure or an explicit
//     Reset.
//
// Endpoints are immutable once the pool is built; slice order defines
// failover priority.
package provider
