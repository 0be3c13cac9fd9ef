// Package state defines persistence contracts for saving and restoring
// document snapshots.
//
// Store[T] only loads and saves a single snapshot for a single Ref. Stores
// never interpret the snapshot; the appstate package decides when to save and
// how a restored snapshot is applied.
//
// Deterministic keys:
//
//	Ref.Identifier() renders "<namespace>/<name>", with namespace defaulting
//	to "default". Adapters should use it as their storage key.
//
// Concurrency control:
//
//	Save compares Meta.ETag against the stored record and fails with
//	ErrETagMismatch when they differ. An empty ETag skips the check.
package state
