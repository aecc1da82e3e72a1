// Package access defines the abstraction of the identities that submit calls
// to the contracts.
package access

import (
	"encoding"
	"fmt"

	"golang.org/x/xerrors"
)

// Identity is an abstraction to uniquely identify the caller of a transaction.
// The text representation must be unique per identity as it is used to build
// the storage keys.
type Identity interface {
	encoding.TextMarshaler
	fmt.Stringer

	// Equal returns true when the other identity is the same.
	Equal(other interface{}) bool
}

// IdentityFactory is the factory interface to parse identities from their text
// representation.
type IdentityFactory interface {
	IdentityOf(text []byte) (Identity, error)
}

// Key returns the text representation of the identity, or an error if it
// cannot be marshaled.
func Key(ident Identity) ([]byte, error) {
	if ident == nil {
		return nil, xerrors.New("missing identity")
	}

	return ident.MarshalText()
}
