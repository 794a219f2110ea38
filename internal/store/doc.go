// Package store persists the application state: both user lists, the selected
// movie, and the current suggestion set.
//
// The whole aggregate is serialized as a single JSON blob in a SQLite
// key/value table and rewritten on every mutation. Update is a locked
// read-modify-write, so concurrent callers in one process never lose each
// other's changes, and an advisory file lock keeps a second process out of
// the same data directory.
package store
