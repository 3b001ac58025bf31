// Package models defines domain entities and persistence interfaces for camsort.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): lightweight structs passed through the sort pipeline
//   - [Track] : a playlist entry plus its enrichment state (pitch class, mode, tempo)
//   - [Playlist] : basic playlist metadata from the playlist provider
//   - [ReferenceEntry] : a record from the local reference dataset
//   - [MatchCandidate] : a reference entry paired with its matcher score
//   - [LookupResult] : a tempo/key pair returned by the external lookup service
//
// 2. Persistent Entities: database-backed models
//   - [PersistedLookup] : a cached external lookup, positive or negative
//   - [SortRun] : one sort invocation, kept for diagnostics
//
// Persistent entities implement the [Model] interface, and [Repository] defines CRUD access to them.
//
// The pitch-class/mode pair on [Track] is the only key representation stored on a track. Camelot codes
// and free-text key names are converted at the boundary by the camelot package.
package models
