// Package fake provides fake implementations for interfaces commonly used in
// the repository.
// The implementations offer configuration to return errors when it is needed by
// the unit test.
package fake

import (
	"bytes"
	"hash"

	"github.com/rs/zerolog"
	"golang.org/x/xerrors"
)

var fakeErr = xerrors.New("fake error")

// GetError returns the fake error.
func GetError() error {
	return fakeErr
}

// Err returns the expected message of an error wrapping the fake error.
func Err(msg string) string {
	return msg + ": " + fakeErr.Error()
}

// Hash is a fake implementation of hash.Hash.
//
// - implements hash.Hash
type Hash struct {
	hash.Hash
	delay int
	err   error
}

// NewBadHash returns a fake hash that returns an error on every write.
func NewBadHash() *Hash {
	return &Hash{err: fakeErr}
}

// NewBadHashWithDelay returns a fake hash that fails after the given number of
// successful writes.
func NewBadHashWithDelay(delay int) *Hash {
	return &Hash{err: fakeErr, delay: delay}
}

// Write implements hash.Hash.
func (h *Hash) Write(in []byte) (int, error) {
	if h.delay > 0 {
		h.delay--
		return len(in), nil
	}

	return 0, h.err
}

// Sum implements hash.Hash.
func (h *Hash) Sum([]byte) []byte {
	return []byte{}
}

// NewBufferLogger returns a logger that writes JSON lines into the returned
// buffer.
func NewBufferLogger() (zerolog.Logger, *bytes.Buffer) {
	buffer := new(bytes.Buffer)

	return zerolog.New(buffer).Level(zerolog.DebugLevel), buffer
}
