// Package mem implements an in-memory trie of key/value pairs.
//
// A staged trie only keeps its own updates and falls back to the parent when a
// key is not found, so that discarding a failed stage is free.
package mem

import (
	"crypto/sha256"
	"encoding/binary"
	"sort"

	"github.com/Veronica1088/clarity-skill-haven/core/store"
	"golang.org/x/xerrors"
)

type item struct {
	value   []byte
	deleted bool
}

// Trie is an in-memory implementation of a trie. It saves the updates in an
// internal store and only keep the updates of the current trie. When reading,
// it'll look up by following the parent trie if the key is not found.
//
// - implements store.Trie
// - implements store.Snapshot
type Trie struct {
	parent *Trie
	store  map[string]item
}

// NewTrie creates a new empty trie.
func NewTrie() *Trie {
	return &Trie{
		store: make(map[string]item),
	}
}

// Get implements store.Readable. It returns the value of the key, or nil if it
// is not set or has been deleted.
func (t *Trie) Get(key []byte) ([]byte, error) {
	for curr := t; curr != nil; curr = curr.parent {
		it, found := curr.store[string(key)]
		if found {
			if it.deleted {
				return nil, nil
			}

			return it.value, nil
		}
	}

	return nil, nil
}

// Set implements store.Writable.
func (t *Trie) Set(key, value []byte) error {
	if len(key) == 0 {
		return xerrors.New("empty key")
	}

	t.store[string(key)] = item{value: append([]byte{}, value...)}

	return nil
}

// Delete implements store.Writable.
func (t *Trie) Delete(key []byte) error {
	t.store[string(key)] = item{deleted: true}

	return nil
}

// GetRoot implements store.Trie. It returns the SHA-256 of the resolved
// entries sorted by key.
func (t *Trie) GetRoot() []byte {
	h := sha256.New()
	length := make([]byte, 8)

	// the callback never fails and the hash writer neither.
	_ = t.ForEach(func(key, value []byte) error {
		binary.LittleEndian.PutUint64(length, uint64(len(key)))
		h.Write(length)
		h.Write(key)

		binary.LittleEndian.PutUint64(length, uint64(len(value)))
		h.Write(length)
		h.Write(value)

		return nil
	})

	return h.Sum(nil)
}

// Stage implements store.Trie. The callback writes into a child of the trie
// which is returned when the callback succeeds.
func (t *Trie) Stage(fn func(store.Snapshot) error) (store.Trie, error) {
	child := t.makeChild()

	err := fn(child)
	if err != nil {
		return nil, err
	}

	return child, nil
}

// ForEach implements store.Trie. It iterates over the resolved entries in key
// order.
func (t *Trie) ForEach(fn func(key, value []byte) error) error {
	resolved := t.resolve()

	keys := make([]string, 0, len(resolved))
	for key := range resolved {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	for _, key := range keys {
		err := fn([]byte(key), resolved[key])
		if err != nil {
			return xerrors.Errorf("callback failed: %v", err)
		}
	}

	return nil
}

// Collapse returns a trie without parent that contains the same resolved
// entries.
func (t *Trie) Collapse() *Trie {
	flat := NewTrie()

	for key, value := range t.resolve() {
		flat.store[key] = item{value: value}
	}

	return flat
}

// Len returns the number of the parent tries, including itself.
func (t *Trie) Len() int {
	n := 0
	for curr := t; curr != nil; curr = curr.parent {
		n++
	}

	return n
}

func (t *Trie) resolve() map[string][]byte {
	chain := []*Trie{}
	for curr := t; curr != nil; curr = curr.parent {
		chain = append(chain, curr)
	}

	resolved := make(map[string][]byte)

	// oldest to newest so that the latest update wins.
	for i := len(chain) - 1; i >= 0; i-- {
		for key, it := range chain[i].store {
			if it.deleted {
				delete(resolved, key)
			} else {
				resolved[key] = it.value
			}
		}
	}

	return resolved
}

func (t *Trie) makeChild() *Trie {
	return &Trie{
		parent: t,
		store:  make(map[string]item),
	}
}
