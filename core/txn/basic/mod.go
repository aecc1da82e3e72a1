// Package basic implements a transaction that carries the identity of its
// caller without any signature. The host of the ledger is trusted to fill the
// identity.
package basic

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"hash"
	"io"
	"sort"
	"sync"

	"github.com/Veronica1088/clarity-skill-haven/core/access"
	"github.com/Veronica1088/clarity-skill-haven/core/txn"
	"golang.org/x/xerrors"
)

// Transaction is a transaction created by an identity with a list of
// arguments.
//
// - implements txn.Transaction
type Transaction struct {
	nonce    uint64
	identity access.Identity
	args     map[string][]byte
	hash     []byte
}

type template struct {
	Transaction

	hashFactory func() hash.Hash
}

// TransactionOption is the type of options to create a transaction.
type TransactionOption func(*template)

// WithArg is an option to set an argument with the key and the value.
func WithArg(key string, value []byte) TransactionOption {
	return func(tmpl *template) {
		tmpl.args[key] = value
	}
}

// WithHashFactory is an option to set a different hash factory when creating a
// transaction.
func WithHashFactory(f func() hash.Hash) TransactionOption {
	return func(tmpl *template) {
		tmpl.hashFactory = f
	}
}

// NewTransaction creates a new transaction with the provided nonce for the
// identity.
func NewTransaction(nonce uint64, ident access.Identity, opts ...TransactionOption) (Transaction, error) {
	tmpl := template{
		Transaction: Transaction{
			nonce:    nonce,
			identity: ident,
			args:     make(map[string][]byte),
		},
		hashFactory: sha256.New,
	}

	for _, opt := range opts {
		opt(&tmpl)
	}

	h := tmpl.hashFactory()
	err := tmpl.Fingerprint(h)
	if err != nil {
		return tmpl.Transaction, xerrors.Errorf("couldn't fingerprint tx: %v", err)
	}

	tmpl.hash = h.Sum(nil)

	return tmpl.Transaction, nil
}

// GetID implements txn.Transaction. It returns the ID of the transaction.
func (t Transaction) GetID() []byte {
	return append([]byte{}, t.hash...)
}

// GetNonce implements txn.Transaction. It returns the nonce of the transaction.
func (t Transaction) GetNonce() uint64 {
	return t.nonce
}

// GetIdentity implements txn.Transaction. It returns the caller of the
// transaction.
func (t Transaction) GetIdentity() access.Identity {
	return t.identity
}

// GetArgs returns the list of arguments available in key order.
func (t Transaction) GetArgs() []string {
	args := make([]string, 0, len(t.args))
	for key := range t.args {
		args = append(args, key)
	}

	sort.Strings(args)

	return args
}

// GetArg implements txn.Transaction. It returns the value of the argument if it
// is set, otherwise nil.
func (t Transaction) GetArg(key string) []byte {
	return t.args[key]
}

// Fingerprint writes a deterministic binary representation of the
// transaction.
func (t Transaction) Fingerprint(w io.Writer) error {
	buffer := make([]byte, 8)
	binary.LittleEndian.PutUint64(buffer, t.nonce)

	_, err := w.Write(buffer)
	if err != nil {
		return xerrors.Errorf("couldn't write nonce: %v", err)
	}

	if t.identity != nil {
		text, err := t.identity.MarshalText()
		if err != nil {
			return xerrors.Errorf("couldn't marshal identity: %v", err)
		}

		_, err = w.Write(text)
		if err != nil {
			return xerrors.Errorf("couldn't write identity: %v", err)
		}
	}

	for _, key := range t.GetArgs() {
		for _, field := range [][]byte{[]byte(key), t.args[key]} {
			binary.LittleEndian.PutUint64(buffer, uint64(len(field)))

			_, err = w.Write(append(buffer, field...))
			if err != nil {
				return xerrors.Errorf("couldn't write arg: %v", err)
			}
		}
	}

	return nil
}

// TransactionJSON is the JSON message of a transaction.
type TransactionJSON struct {
	Nonce    uint64
	Identity string
	Args     map[string][]byte
}

// MarshalJSON implements json.Marshaler.
func (t Transaction) MarshalJSON() ([]byte, error) {
	m := TransactionJSON{
		Nonce: t.nonce,
		Args:  t.args,
	}

	if t.identity != nil {
		text, err := t.identity.MarshalText()
		if err != nil {
			return nil, xerrors.Errorf("couldn't marshal identity: %v", err)
		}

		m.Identity = string(text)
	}

	return json.Marshal(m)
}

// TransactionFactory is a factory to deserialize transactions.
type TransactionFactory struct {
	identFac access.IdentityFactory
}

// NewTransactionFactory returns a new factory that parses the identities with
// the given factory.
func NewTransactionFactory(f access.IdentityFactory) TransactionFactory {
	return TransactionFactory{
		identFac: f,
	}
}

// TransactionOf populates the transaction from the JSON data if appropriate,
// otherwise it returns an error.
func (f TransactionFactory) TransactionOf(data []byte) (Transaction, error) {
	m := TransactionJSON{}
	err := json.Unmarshal(data, &m)
	if err != nil {
		return Transaction{}, xerrors.Errorf("failed to unmarshal: %v", err)
	}

	var ident access.Identity
	if m.Identity != "" {
		ident, err = f.identFac.IdentityOf([]byte(m.Identity))
		if err != nil {
			return Transaction{}, xerrors.Errorf("failed to decode identity: %v", err)
		}
	}

	opts := make([]TransactionOption, 0, len(m.Args))
	for key, value := range m.Args {
		opts = append(opts, WithArg(key, value))
	}

	tx, err := NewTransaction(m.Nonce, ident, opts...)
	if err != nil {
		return Transaction{}, xerrors.Errorf("failed to create tx: %v", err)
	}

	return tx, nil
}

// Manager is a manager to create the transactions of one identity. It manages
// the nonce by itself.
//
// - implements txn.Manager
type Manager struct {
	sync.Mutex

	identity access.Identity
	nonce    uint64
}

// NewManager creates a new transaction manager for the identity.
func NewManager(ident access.Identity) *Manager {
	return &Manager{
		identity: ident,
	}
}

// Make implements txn.Manager. It creates a transaction populated with the
// arguments and the next nonce.
func (mgr *Manager) Make(args ...txn.Arg) (txn.Transaction, error) {
	mgr.Lock()
	defer mgr.Unlock()

	opts := make([]TransactionOption, len(args))
	for i, arg := range args {
		opts[i] = WithArg(arg.Key, arg.Value)
	}

	tx, err := NewTransaction(mgr.nonce, mgr.identity, opts...)
	if err != nil {
		return nil, xerrors.Errorf("failed to create tx: %v", err)
	}

	mgr.nonce++

	return tx, nil
}
