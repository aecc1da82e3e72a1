package coin

import (
	"testing"

	"github.com/Veronica1088/clarity-skill-haven/core/execution"
	"github.com/Veronica1088/clarity-skill-haven/core/execution/native"
	"github.com/Veronica1088/clarity-skill-haven/core/store"
	"github.com/Veronica1088/clarity-skill-haven/core/txn"
	"github.com/Veronica1088/clarity-skill-haven/core/txn/basic"
	"github.com/Veronica1088/clarity-skill-haven/internal/testing/fake"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"
)

var (
	alice = fake.NewIdentity("alice")
	bob   = fake.NewIdentity("bob")
)

func TestExecute(t *testing.T) {
	contract := NewContract(fake.IdentityFactory{})

	_, err := contract.Execute(fake.NewSnapshot(), makeStep(t, alice))
	require.EqualError(t, err, "'coin:command' not found in tx arg: invalid argument")
	require.True(t, xerrors.Is(err, ErrInvalidArgument))

	contract.cmd = fakeCmd{err: fake.GetError()}

	_, err = contract.Execute(fake.NewSnapshot(), makeStep(t, alice, CmdArg, "TRANSFER"))
	require.EqualError(t, err, fake.Err("failed to TRANSFER"))

	_, err = contract.Execute(fake.NewSnapshot(), makeStep(t, alice, CmdArg, "BALANCE"))
	require.EqualError(t, err, fake.Err("failed to BALANCE"))

	_, err = contract.Execute(fake.NewSnapshot(), makeStep(t, alice, CmdArg, "fake"))
	require.EqualError(t, err, "unknown command 'fake': invalid argument")

	contract.cmd = fakeCmd{}
	value, err := contract.Execute(fake.NewSnapshot(), makeStep(t, alice, CmdArg, "TRANSFER"))
	require.NoError(t, err)
	require.Equal(t, true, value)
}

func TestCommand_Transfer(t *testing.T) {
	contract := NewContract(fake.IdentityFactory{})

	cmd := coinCommand{
		Contract: &contract,
	}

	snap := fake.NewSnapshot()
	require.NoError(t, Mint(snap, alice, 100))

	_, err := cmd.transfer(snap, makeStep(t, alice))
	require.EqualError(t, err, "'coin:recipient' not found in tx arg: invalid argument")

	_, err = cmd.transfer(snap, makeStep(t, alice, RecipientArg, "fake:bob", AmountArg, "-1"))
	require.EqualError(t, err, "malformed amount: invalid argument")

	_, err = cmd.transfer(snap, makeStep(t, alice, RecipientArg, "fake:bob", AmountArg, "101"))
	require.Equal(t, ErrInsufficientFunds, err)

	value, err := cmd.transfer(snap, makeStep(t, alice, RecipientArg, "fake:bob", AmountArg, "60"))
	require.NoError(t, err)
	require.Equal(t, true, value)

	requireBalance(t, snap, alice, 40)
	requireBalance(t, snap, bob, 60)

	contract.identFac = fake.NewBadIdentityFactory()
	_, err = cmd.transfer(snap, makeStep(t, alice, RecipientArg, "fake:bob", AmountArg, "1"))
	require.EqualError(t, err, "malformed identity 'fake:bob': invalid argument")
}

func TestCommand_Balance(t *testing.T) {
	contract := NewContract(fake.IdentityFactory{})

	cmd := coinCommand{
		Contract: &contract,
	}

	snap := fake.NewSnapshot()
	require.NoError(t, Mint(snap, bob, 5))

	value, err := cmd.balance(snap, makeStep(t, alice, AccountArg, "fake:bob"))
	require.NoError(t, err)
	require.Equal(t, uint64(5), value)

	_, err = cmd.balance(snap, makeStep(t, alice))
	require.EqualError(t, err, "'coin:account' not found in tx arg: invalid argument")

	_, err = cmd.balance(fake.NewBadSnapshot(), makeStep(t, alice, AccountArg, "fake:bob"))
	require.EqualError(t, err, fake.Err("failed to read balance"))
}

func TestTransfer(t *testing.T) {
	snap := fake.NewSnapshot()

	require.NoError(t, Mint(snap, alice, 10))

	require.Equal(t, ErrNonPositiveAmount, Transfer(snap, alice, bob, 0))
	require.Equal(t, ErrSameAccount, Transfer(snap, alice, alice, 1))
	require.Equal(t, ErrInsufficientFunds, Transfer(snap, bob, alice, 1))

	err := Transfer(snap, nil, bob, 1)
	require.EqualError(t, err, "missing account: invalid argument")

	require.NoError(t, Mint(snap, bob, ^uint64(0)))
	require.Equal(t, ErrOverflow, Transfer(snap, alice, bob, 1))

	requireBalance(t, snap, alice, 10)

	err = Transfer(fake.NewBadSnapshot(), alice, bob, 1)
	require.EqualError(t, err, fake.Err("failed to read balance"))

	err = Transfer(snap, alice, fake.NewBadIdentity(), 1)
	require.EqualError(t, err, fake.Err("invalid account"))
}

func TestMint(t *testing.T) {
	snap := fake.NewSnapshot()

	require.NoError(t, Mint(snap, alice, 10))
	require.NoError(t, Mint(snap, alice, 5))
	requireBalance(t, snap, alice, 15)

	require.Equal(t, ErrOverflow, Mint(snap, alice, ^uint64(0)))

	err := Mint(fake.NewBadSnapshot(), alice, 1)
	require.EqualError(t, err, fake.Err("failed to read balance"))
}

func TestBalance_Corrupted(t *testing.T) {
	snap := fake.NewSnapshot()
	require.NoError(t, snap.Set([]byte("coin:fake:alice"), []byte{1}))

	_, err := Balance(snap, alice)
	require.EqualError(t, err, "corrupted balance of 1 bytes")
}

func TestErrorCode(t *testing.T) {
	require.Equal(t, "insufficient funds", ErrInsufficientFunds.Error())
	require.Equal(t, uint32(1), ErrInsufficientFunds.ErrorCode())
	require.Equal(t, "unknown error 99", ErrorCode(99).Error())
	require.Equal(t, "InsufficientFunds", ErrInsufficientFunds.Reason())
	require.Equal(t, "Unknown", ErrorCode(99).Reason())

	var coded execution.Coded
	require.True(t, xerrors.As(xerrors.Errorf("failed: %w", ErrSameAccount), &coded))
	require.Equal(t, uint32(2), coded.ErrorCode())
}

func TestArgs(t *testing.T) {
	args, err := TransferArgs(bob, 42)
	require.NoError(t, err)
	require.Equal(t, []txn.Arg{
		{Key: native.ContractArg, Value: []byte(ContractName)},
		{Key: CmdArg, Value: []byte("TRANSFER")},
		{Key: RecipientArg, Value: []byte("fake:bob")},
		{Key: AmountArg, Value: []byte("42")},
	}, args)

	_, err = TransferArgs(fake.NewBadIdentity(), 1)
	require.EqualError(t, err, fake.Err("invalid recipient"))

	args, err = BalanceArgs(alice)
	require.NoError(t, err)
	require.Len(t, args, 3)

	_, err = BalanceArgs(nil)
	require.EqualError(t, err, "invalid account: missing identity")
}

func TestRegisterContract(t *testing.T) {
	RegisterContract(native.NewExecution(), Contract{})
}

// -----------------------------------------------------------------------------
// Utility functions

func requireBalance(t *testing.T, snap store.Readable, account fake.Identity, expected uint64) {
	balance, err := Balance(snap, account)
	require.NoError(t, err)
	require.Equal(t, expected, balance)
}

func makeStep(t *testing.T, caller fake.Identity, args ...string) execution.Step {
	return execution.Step{Current: makeTx(t, caller, args...)}
}

func makeTx(t *testing.T, caller fake.Identity, args ...string) txn.Transaction {
	options := []basic.TransactionOption{}
	for i := 0; i < len(args)-1; i += 2 {
		options = append(options, basic.WithArg(args[i], []byte(args[i+1])))
	}

	tx, err := basic.NewTransaction(0, caller, options...)
	require.NoError(t, err)

	return tx
}

type fakeCmd struct {
	err error
}

func (c fakeCmd) transfer(snap store.Snapshot, step execution.Step) (interface{}, error) {
	return true, c.err
}

func (c fakeCmd) balance(snap store.Snapshot, step execution.Step) (interface{}, error) {
	return uint64(0), c.err
}
