// Package tasks enriches playlist tracks with key and tempo and sorts them harmonically,
// with real-time progress reporting.
//
// # Core Operations
//
// The [SortEngine] interface defines three operations:
//
//  1. [SortEngine.Plan] : Fetch, enrich and sort without writing
//     - Fetches playlist metadata and every track
//     - Resolves keys through the [Enricher]
//     - Orders tracks with [SortHarmonic] and attaches suggestions for misses
//
//  2. [SortEngine.Apply] : Write a plan's order back to the provider
//     - Refuses plans whose playlist holds items the provider skipped
//
//  3. [SortEngine.Run] : Plan, then apply unless dry-run
//
// # Resolution
//
// A [Resolver] turns one track into a key and tempo. [LocalResolver] reads the reference
// dataset and [LookupResolver] asks an external service, optionally through a [LookupCacher].
// A [ChainResolver] fixes the order they are tried in.
//
// The [Enricher] runs the chain stage by stage. The first stage runs inline. Later stages
// run with bounded concurrency and are merged back by index. A track is enriched at most
// once and every failure is logged and skipped.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
//
// # Run History
//
// The optional [RunRecorder] interface stores a summary of each run (repositories.SortRunRepository).
// Recording errors are logged and never fail a run.
package tasks
