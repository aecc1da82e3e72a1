package access

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"
)

func TestKey(t *testing.T) {
	key, err := Key(fakeIdentity{text: "alice"})
	require.NoError(t, err)
	require.Equal(t, []byte("alice"), key)

	_, err = Key(nil)
	require.EqualError(t, err, "missing identity")

	_, err = Key(fakeIdentity{err: xerrors.New("oops")})
	require.EqualError(t, err, "oops")
}

// -----------------------------------------------------------------------------
// Utility functions

type fakeIdentity struct {
	Identity

	text string
	err  error
}

func (i fakeIdentity) MarshalText() ([]byte, error) {
	return []byte(i.text), i.err
}
