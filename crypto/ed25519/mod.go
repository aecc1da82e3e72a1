// Package ed25519 implements the identities of the accounts using public keys
// on the Edwards 25519 elliptic curve.
//
// Calls are not signed: the key only gives a unique and stable identity to an
// account, which can be generated deterministically from a seed for the
// development accounts.
package ed25519

import (
	"bytes"
	"encoding/hex"

	"github.com/Veronica1088/clarity-skill-haven/core/access"
	"go.dedis.ch/kyber/v3"
	"go.dedis.ch/kyber/v3/suites"
	"go.dedis.ch/kyber/v3/util/key"
	"golang.org/x/xerrors"
)

const (
	// Algorithm is the name of the curve.
	Algorithm = "ed25519"

	textPrefix = Algorithm + ":"
)

var suite = suites.MustFind("Ed25519")

// PublicKey is the public key adapter to the Kyber Ed25519 public key.
//
// - implements access.Identity
type PublicKey struct {
	point kyber.Point
}

// NewPublicKey returns a new public key from the data.
func NewPublicKey(data []byte) (PublicKey, error) {
	point := suite.Point()
	err := point.UnmarshalBinary(data)
	if err != nil {
		return PublicKey{}, xerrors.Errorf("couldn't unmarshal point: %v", err)
	}

	pk := PublicKey{
		point: point,
	}

	return pk, nil
}

// NewPublicKeyFromPoint creates a new public key from an existing point.
func NewPublicKeyFromPoint(point kyber.Point) PublicKey {
	return PublicKey{
		point: point,
	}
}

// NewKeyFromSeed derives the public key of the private scalar picked from the
// seed. The same seed always produces the same key.
func NewKeyFromSeed(seed []byte) PublicKey {
	secret := suite.Scalar().Pick(suite.XOF(seed))

	return NewPublicKeyFromPoint(suite.Point().Mul(secret, nil))
}

// NewRandomKey returns the public key of a fresh key pair.
func NewRandomKey() PublicKey {
	kp := key.NewKeyPair(suite)

	return NewPublicKeyFromPoint(kp.Public)
}

// MarshalBinary implements encoding.BinaryMarshaler. It produces a slice of
// bytes representing the public key.
func (pk PublicKey) MarshalBinary() ([]byte, error) {
	if pk.point == nil {
		return nil, xerrors.New("missing point")
	}

	return pk.point.MarshalBinary()
}

// Equal implements access.Identity. It returns true if the other public key
// is the same.
func (pk PublicKey) Equal(other interface{}) bool {
	pubkey, ok := other.(PublicKey)
	if !ok || pubkey.point == nil || pk.point == nil {
		return false
	}

	return pubkey.point.Equal(pk.point)
}

// MarshalText implements encoding.TextMarshaler. It returns a text
// representation of the public key.
func (pk PublicKey) MarshalText() ([]byte, error) {
	buffer, err := pk.MarshalBinary()
	if err != nil {
		return nil, xerrors.Errorf("couldn't marshal: %v", err)
	}

	return []byte(textPrefix + hex.EncodeToString(buffer)), nil
}

// GetPoint returns the kyber.point.
func (pk PublicKey) GetPoint() kyber.Point {
	return pk.point
}

// String implements fmt.Stringer. It returns a string representation of the
// point.
func (pk PublicKey) String() string {
	buffer, err := pk.MarshalText()
	if err != nil {
		return textPrefix + "malformed_point"
	}

	// Output only the prefix and 16 characters of the buffer in hexadecimal.
	return string(buffer)[:len(textPrefix)+16]
}

// PublicKeyFactory parses the text representation of the public keys.
//
// - implements access.IdentityFactory
type PublicKeyFactory struct{}

// NewPublicKeyFactory returns a new factory.
func NewPublicKeyFactory() PublicKeyFactory {
	return PublicKeyFactory{}
}

// IdentityOf implements access.IdentityFactory.
func (f PublicKeyFactory) IdentityOf(text []byte) (access.Identity, error) {
	pk, err := f.PublicKeyOf(text)
	if err != nil {
		return nil, err
	}

	return pk, nil
}

// PublicKeyOf returns the public key of the text representation.
func (PublicKeyFactory) PublicKeyOf(text []byte) (PublicKey, error) {
	if !bytes.HasPrefix(text, []byte(textPrefix)) {
		return PublicKey{}, xerrors.Errorf("invalid prefix in '%s'", text)
	}

	data, err := hex.DecodeString(string(text[len(textPrefix):]))
	if err != nil {
		return PublicKey{}, xerrors.Errorf("couldn't decode: %v", err)
	}

	return NewPublicKey(data)
}
