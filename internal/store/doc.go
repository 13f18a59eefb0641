// Package store provides the shared status table for livecheck.
//
// This package is internal to livecheck and holds the single source of truth
// for the state of every checked name. The scheduler's dispatcher and workers
// write to it; renderers and the HTTP surface read snapshots from it.
//
// The main components are:
//
//   - [Table]: Mutex-guarded map of name to [Entry] with pub/sub
//   - [Store]: Read-only view consumed by renderers and the HTTP server
//   - [State]: Lifecycle state of a single name
//
// Terminal states ([StateLive], [StateOffline], [StateNotFound]) are
// write-once: once a name reaches one, every later transition is rejected.
// Subscribers receive updates via channels with non-blocking sends (slow
// subscribers will miss updates rather than block the workers).
//
// Users of the livecheck library should not need to interact with this
// package directly.
package store
