// Package store defines the primitives of a simple key/value storage.
//
// A missing key is never an error: readers return a nil value and let the
// caller decide what absence means.
package store

// Readable is the interface for a readable store.
type Readable interface {
	Get(key []byte) ([]byte, error)
}

// Writable is the interface for a writable store.
type Writable interface {
	Set(key []byte, value []byte) error

	Delete(key []byte) error
}

// Snapshot is a state of the store that can be read and write independently. A
// write is applied only to the snapshot reference.
type Snapshot interface {
	Readable
	Writable
}

// Trie is a read-only committed state. Updates are performed by staging a new
// trie from the current one.
type Trie interface {
	Readable

	// GetRoot returns the fingerprint of the state.
	GetRoot() []byte

	// Stage runs the callback on a writable copy of the trie. The new trie is
	// returned only if the callback succeeds, and the current one is left
	// untouched in any case.
	Stage(fn func(Snapshot) error) (Trie, error)

	// ForEach iterates over the entries of the trie in key order. The iteration
	// stops when the callback returns an error.
	ForEach(fn func(key, value []byte) error) error
}
