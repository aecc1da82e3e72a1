package fake

import (
	"strings"

	"github.com/Veronica1088/clarity-skill-haven/core/access"
)

// Identity is a fake implementation of access.Identity identified by a name.
//
// - implements access.Identity
type Identity struct {
	Name string
	err  error
}

// NewIdentity returns a new identity with the name.
func NewIdentity(name string) Identity {
	return Identity{Name: name}
}

// NewBadIdentity returns an identity that fails to marshal.
func NewBadIdentity() Identity {
	return Identity{Name: "bad", err: fakeErr}
}

// MarshalText implements encoding.TextMarshaler.
func (i Identity) MarshalText() ([]byte, error) {
	if i.err != nil {
		return nil, i.err
	}

	return []byte("fake:" + i.Name), nil
}

// String implements fmt.Stringer.
func (i Identity) String() string {
	return "fake:" + i.Name
}

// Equal implements access.Identity.
func (i Identity) Equal(other interface{}) bool {
	o, ok := other.(Identity)
	return ok && o.Name == i.Name
}

// IdentityFactory is a fake implementation of access.IdentityFactory.
//
// - implements access.IdentityFactory
type IdentityFactory struct {
	err error
}

// NewBadIdentityFactory returns a factory that always fails.
func NewBadIdentityFactory() IdentityFactory {
	return IdentityFactory{err: fakeErr}
}

// IdentityOf implements access.IdentityFactory.
func (f IdentityFactory) IdentityOf(text []byte) (access.Identity, error) {
	if f.err != nil {
		return nil, f.err
	}

	return NewIdentity(strings.TrimPrefix(string(text), "fake:")), nil
}
