package ledger

import (
	"fmt"
	"sort"

	"github.com/Veronica1088/clarity-skill-haven/core/execution"
	"github.com/Veronica1088/clarity-skill-haven/core/txn"
	"github.com/Veronica1088/clarity-skill-haven/core/txn/basic"
	"github.com/Veronica1088/clarity-skill-haven/crypto/ed25519"
	"golang.org/x/xerrors"
)

// DeployerName is the name of the account that deploys the contracts on a
// development network.
const DeployerName = "deployer"

// DefaultBalance is the initial balance of the accounts of a development
// network.
const DefaultBalance uint64 = 100_000_000_000_000

// Wallet is a named account of a development network with its own
// transaction manager.
type Wallet struct {
	Name     string
	Identity ed25519.PublicKey

	manager *basic.Manager
}

// Devnet is a chain with a set of deterministic funded wallets, used for
// local scenarios and tests.
type Devnet struct {
	*Chain

	wallets map[string]*Wallet
}

// NewDevnet creates a chain with the deployer and n wallets named wallet_1 to
// wallet_n, each of them funded with the balance.
func NewDevnet(n int, balance uint64, opts ...Option) (*Devnet, error) {
	names := []string{DeployerName}
	for i := 1; i <= n; i++ {
		names = append(names, fmt.Sprintf("wallet_%d", i))
	}

	wallets := make(map[string]*Wallet, len(names))
	allocs := make([]Allocation, 0, len(names))

	for _, name := range names {
		ident := WalletIdentity(name)

		wallets[name] = &Wallet{
			Name:     name,
			Identity: ident,
			manager:  basic.NewManager(ident),
		}

		allocs = append(allocs, Allocation{Account: ident, Amount: balance})
	}

	chain, err := NewChain(append([]Option{WithGenesis(allocs...)}, opts...)...)
	if err != nil {
		return nil, xerrors.Errorf("failed to create chain: %v", err)
	}

	devnet := &Devnet{
		Chain:   chain,
		wallets: wallets,
	}

	return devnet, nil
}

// WalletIdentity returns the deterministic identity of the wallet with the name
// on a development network.
func WalletIdentity(name string) ed25519.PublicKey {
	return ed25519.NewKeyFromSeed([]byte(name))
}

// Wallet returns the wallet with the name, or nil if it does not exist.
func (d *Devnet) Wallet(name string) *Wallet {
	return d.wallets[name]
}

// Names returns the names of the wallets in alphabetical order.
func (d *Devnet) Names() []string {
	names := make([]string, 0, len(d.wallets))
	for name := range d.wallets {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Tx creates a transaction of the wallet with the arguments.
func (d *Devnet) Tx(name string, args ...txn.Arg) (txn.Transaction, error) {
	wallet := d.wallets[name]
	if wallet == nil {
		return nil, xerrors.Errorf("unknown wallet '%s'", name)
	}

	tx, err := wallet.manager.Make(args...)
	if err != nil {
		return nil, xerrors.Errorf("failed to make tx: %v", err)
	}

	return tx, nil
}

// Call mines a block with a single transaction of the wallet and returns its
// receipt.
func (d *Devnet) Call(name string, args ...txn.Arg) (Receipt, error) {
	tx, err := d.Tx(name, args...)
	if err != nil {
		return Receipt{}, err
	}

	block, err := d.MineBlock(tx)
	if err != nil {
		return Receipt{}, xerrors.Errorf("failed to mine: %v", err)
	}

	return block.Receipts[0], nil
}

// ReadOnly executes a call of the wallet without mining a block.
func (d *Devnet) ReadOnly(name string, args ...txn.Arg) (execution.Result, error) {
	tx, err := d.Tx(name, args...)
	if err != nil {
		return execution.Result{}, err
	}

	return d.Query(tx)
}
