// Package repositories implements SQLite persistence for camsort.
//
// Key Implementations:
//   - [LookupCacheRepository] : external lookup results keyed by normalized "title|artist", including misses
//   - [LookupCacheAdapter] : the cache interface consumed by the enrichment pipeline
//   - [SortRunRepository] : one row per sort invocation
//
// Sequence numbers provide stable, human-readable ordering independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
