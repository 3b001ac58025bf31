// Package reference holds the local reference dataset and the scored matcher
// that maps playlist tracks onto it.
//
// A [Store] is built once, never mutated afterwards, and can be shared across
// goroutines. It indexes entries by normalized title and keeps the flat entry
// list for the fuzzy fallback.
package reference
