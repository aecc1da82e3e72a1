// Package coin implements the native contract that holds the balances of the
// accounts and moves value between them.
//
// Balances are only created at genesis with Mint. Other contracts move value
// with Transfer inside their own execution so that the transfer is committed
// or discarded together with their changes.
package coin

import (
	"encoding/binary"
	"math"
	"strconv"

	haven "github.com/Veronica1088/clarity-skill-haven"
	"github.com/Veronica1088/clarity-skill-haven/core/access"
	"github.com/Veronica1088/clarity-skill-haven/core/execution"
	"github.com/Veronica1088/clarity-skill-haven/core/execution/native"
	"github.com/Veronica1088/clarity-skill-haven/core/store"
	"github.com/Veronica1088/clarity-skill-haven/core/store/prefixed"
	"github.com/Veronica1088/clarity-skill-haven/core/txn"
	"github.com/rs/zerolog"
	"golang.org/x/xerrors"
)

// commands defines the commands of the coin contract. This interface helps in
// testing the contract.
type commands interface {
	transfer(snap store.Snapshot, step execution.Step) (interface{}, error)
	balance(snap store.Snapshot, step execution.Step) (interface{}, error)
}

const (
	// ContractName is the name of the contract.
	ContractName = "skillhaven.Coin"

	// CmdArg is the argument's name to indicate the kind of command we want to
	// run on the contract. Should be one of the Command type.
	CmdArg = "coin:command"

	// RecipientArg is the argument's name in the transaction that contains the
	// text representation of the recipient of a transfer.
	RecipientArg = "coin:recipient"

	// AmountArg is the argument's name in the transaction that contains the
	// decimal amount to transfer.
	AmountArg = "coin:amount"

	// AccountArg is the argument's name in the transaction that contains the
	// text representation of the account to read the balance of.
	AccountArg = "coin:account"

	prefix = "coin"
)

// Command defines a type of command for the coin contract.
type Command string

const (
	// CmdTransfer defines the command to move value from the caller to the
	// recipient.
	CmdTransfer Command = "TRANSFER"

	// CmdBalance defines the command to read the balance of an account.
	CmdBalance Command = "BALANCE"
)

// ErrorCode is the reason code of a rejected coin transaction.
type ErrorCode uint32

const (
	// ErrInsufficientFunds is returned when the sender cannot cover the amount.
	ErrInsufficientFunds ErrorCode = 1

	// ErrSameAccount is returned when the sender is also the recipient.
	ErrSameAccount ErrorCode = 2

	// ErrNonPositiveAmount is returned when the amount is zero.
	ErrNonPositiveAmount ErrorCode = 3

	// ErrInvalidArgument is returned when an argument is missing or malformed.
	ErrInvalidArgument ErrorCode = 4

	// ErrOverflow is returned when a balance would exceed the maximum value.
	ErrOverflow ErrorCode = 5
)

var errorNames = map[ErrorCode]string{
	ErrInsufficientFunds: "insufficient funds",
	ErrSameAccount:       "sender is the recipient",
	ErrNonPositiveAmount: "non-positive amount",
	ErrInvalidArgument:   "invalid argument",
	ErrOverflow:          "balance overflow",
}

var reasonNames = map[ErrorCode]string{
	ErrInsufficientFunds: "InsufficientFunds",
	ErrSameAccount:       "SameAccount",
	ErrNonPositiveAmount: "NonPositiveAmount",
	ErrInvalidArgument:   "InvalidArgument",
	ErrOverflow:          "Overflow",
}

// Error implements error.
func (c ErrorCode) Error() string {
	name, found := errorNames[c]
	if !found {
		return "unknown error " + strconv.FormatUint(uint64(c), 10)
	}

	return name
}

// Reason returns the name of the reason, like "SameAccount".
func (c ErrorCode) Reason() string {
	name, found := reasonNames[c]
	if !found {
		return "Unknown"
	}

	return name
}

// ErrorCode implements execution.Coded.
func (c ErrorCode) ErrorCode() uint32 {
	return uint32(c)
}

// RegisterContract registers the coin contract to the given execution service.
func RegisterContract(exec *native.Service, c Contract) {
	exec.Set(ContractName, c)
}

// Contract is the smart contract that handles the transfers of value.
//
// - implements native.Contract
type Contract struct {
	// identFac parses the accounts passed as arguments
	identFac access.IdentityFactory

	// cmd provides the commands that can be executed by this smart contract
	cmd commands

	logger zerolog.Logger
}

// NewContract creates a new coin contract.
func NewContract(f access.IdentityFactory) Contract {
	contract := Contract{
		identFac: f,
		logger:   haven.Logger.With().Str("contract", "coin").Logger(),
	}

	contract.cmd = coinCommand{Contract: &contract}

	return contract
}

// Execute implements native.Contract. It runs the appropriate command.
func (c Contract) Execute(snap store.Snapshot, step execution.Step) (interface{}, error) {
	cmd := step.Current.GetArg(CmdArg)
	if len(cmd) == 0 {
		return nil, xerrors.Errorf("'%s' not found in tx arg: %w", CmdArg, ErrInvalidArgument)
	}

	switch Command(cmd) {
	case CmdTransfer:
		value, err := c.cmd.transfer(snap, step)
		if err != nil {
			return nil, xerrors.Errorf("failed to TRANSFER: %w", err)
		}

		return value, nil
	case CmdBalance:
		value, err := c.cmd.balance(snap, step)
		if err != nil {
			return nil, xerrors.Errorf("failed to BALANCE: %w", err)
		}

		return value, nil
	default:
		return nil, xerrors.Errorf("unknown command '%s': %w", cmd, ErrInvalidArgument)
	}
}

// coinCommand implements the commands of the coin contract
//
// - implements commands
type coinCommand struct {
	*Contract
}

// transfer implements commands. It performs the TRANSFER command and returns
// true on success.
func (c coinCommand) transfer(snap store.Snapshot, step execution.Step) (interface{}, error) {
	to, err := c.identityArg(step, RecipientArg)
	if err != nil {
		return nil, err
	}

	amount, err := strconv.ParseUint(string(step.Current.GetArg(AmountArg)), 10, 64)
	if err != nil {
		return nil, xerrors.Errorf("malformed amount: %w", ErrInvalidArgument)
	}

	err = Transfer(snap, step.Current.GetIdentity(), to, amount)
	if err != nil {
		return nil, err
	}

	c.logger.Info().
		Stringer("from", step.Current.GetIdentity()).
		Stringer("to", to).
		Uint64("amount", amount).
		Msg("transfer")

	return true, nil
}

// balance implements commands. It performs the BALANCE command and returns the
// balance of the account.
func (c coinCommand) balance(snap store.Snapshot, step execution.Step) (interface{}, error) {
	account, err := c.identityArg(step, AccountArg)
	if err != nil {
		return nil, err
	}

	return Balance(snap, account)
}

func (c coinCommand) identityArg(step execution.Step, key string) (access.Identity, error) {
	text := step.Current.GetArg(key)
	if len(text) == 0 {
		return nil, xerrors.Errorf("'%s' not found in tx arg: %w", key, ErrInvalidArgument)
	}

	ident, err := c.identFac.IdentityOf(text)
	if err != nil {
		return nil, xerrors.Errorf("malformed identity '%s': %w", text, ErrInvalidArgument)
	}

	return ident, nil
}

// Balance returns the balance of the account, which is zero when the account
// has never received anything.
func Balance(snap store.Readable, account access.Identity) (uint64, error) {
	key, err := access.Key(account)
	if err != nil {
		return 0, xerrors.Errorf("invalid account: %v", err)
	}

	value, err := prefixed.NewReadable(prefix, snap).Get(key)
	if err != nil {
		return 0, xerrors.Errorf("failed to read balance: %v", err)
	}

	if len(value) == 0 {
		return 0, nil
	}

	if len(value) != 8 {
		return 0, xerrors.Errorf("corrupted balance of %d bytes", len(value))
	}

	return binary.BigEndian.Uint64(value), nil
}

// Mint creates the amount of value out of thin air for the account. It should
// only be used to initialize the state of a ledger.
func Mint(snap store.Snapshot, account access.Identity, amount uint64) error {
	balance, err := Balance(snap, account)
	if err != nil {
		return err
	}

	if balance > math.MaxUint64-amount {
		return ErrOverflow
	}

	return setBalance(snap, account, balance+amount)
}

// Transfer moves the amount from one account to the other. Nothing is written
// when the transfer is refused.
func Transfer(snap store.Snapshot, from, to access.Identity, amount uint64) error {
	if amount == 0 {
		return ErrNonPositiveAmount
	}

	if from == nil || to == nil {
		return xerrors.Errorf("missing account: %w", ErrInvalidArgument)
	}

	if from.Equal(to) {
		return ErrSameAccount
	}

	fromBalance, err := Balance(snap, from)
	if err != nil {
		return err
	}

	if fromBalance < amount {
		return ErrInsufficientFunds
	}

	toBalance, err := Balance(snap, to)
	if err != nil {
		return err
	}

	if toBalance > math.MaxUint64-amount {
		return ErrOverflow
	}

	err = setBalance(snap, from, fromBalance-amount)
	if err != nil {
		return err
	}

	err = setBalance(snap, to, toBalance+amount)
	if err != nil {
		return err
	}

	return nil
}

// TransferArgs returns the arguments of a transaction that transfers the amount
// from the caller to the recipient.
func TransferArgs(to access.Identity, amount uint64) ([]txn.Arg, error) {
	text, err := access.Key(to)
	if err != nil {
		return nil, xerrors.Errorf("invalid recipient: %v", err)
	}

	args := []txn.Arg{
		{Key: native.ContractArg, Value: []byte(ContractName)},
		{Key: CmdArg, Value: []byte(CmdTransfer)},
		{Key: RecipientArg, Value: text},
		{Key: AmountArg, Value: []byte(strconv.FormatUint(amount, 10))},
	}

	return args, nil
}

// BalanceArgs returns the arguments of a transaction that reads the balance of
// the account.
func BalanceArgs(account access.Identity) ([]txn.Arg, error) {
	text, err := access.Key(account)
	if err != nil {
		return nil, xerrors.Errorf("invalid account: %v", err)
	}

	args := []txn.Arg{
		{Key: native.ContractArg, Value: []byte(ContractName)},
		{Key: CmdArg, Value: []byte(CmdBalance)},
		{Key: AccountArg, Value: text},
	}

	return args, nil
}

func setBalance(snap store.Snapshot, account access.Identity, balance uint64) error {
	key, err := access.Key(account)
	if err != nil {
		return xerrors.Errorf("invalid account: %v", err)
	}

	value := make([]byte, 8)
	binary.BigEndian.PutUint64(value, balance)

	err = prefixed.NewSnapshot(prefix, snap).Set(key, value)
	if err != nil {
		return xerrors.Errorf("failed to write balance: %v", err)
	}

	return nil
}
