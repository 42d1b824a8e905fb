// Package fieldcache provides read-through caching for GraphQL field
// resolution.
//
// # Overview
//
// This package implements the orchestration half of the module: the host
// engine suspends a field resolution, the Resolver builds a cache key from
// the resolution context, and the Marshal engine either returns a
// previously stored value or runs the computation and stores its canonical
// form for future reuse.
//
// # Read-through protocol
//
// One read-through cycle:
//
//  1. Check the store for the serialized key (skipped under force refresh)
//  2. On a hit, return the stored canonical value; the computation never runs
//  3. On a miss, invoke the thunk and deconstruct the raw result
//  4. Plain values are sanitized and written synchronously
//  5. Deferred values return to the caller immediately; the write runs as a
//     continuation once the value materializes
//
// The raw resolved value is always what the caller receives on a miss; the
// engine's own deferred-value protocol stays intact, decoupling "when the
// caller gets the value" from "when the cache gets written".
//
// # Failure policy
//
// Caching is a performance optimization, never a correctness dependency:
//
//   - Computation errors propagate unchanged; the cache never masks them
//   - A store write rejected for serialization reasons is retried once
//     after a stricter re-clean, then skipped with a logged diagnostic
//   - Store outages propagate; retry/backoff belongs to the store's client
//
// # Concurrency
//
// Nothing here spawns worker goroutines; suspension happens only at
// deferred-value boundaries. By default, concurrent misses on the same key
// are not de-duplicated: both may compute and both may write, last write
// winning at the store. Config.SingleFlight opts into per-key miss
// de-duplication for deployments where recomputation is expensive.
//
// # See Also
//
// Key construction and the store contract live in the cache package; value
// reduction lives in the canonical package. For wiring, see pkg/di.
package fieldcache
