// Package execution defines the primitives to execute a transaction against a
// snapshot of the state.
package execution

import (
	"github.com/Veronica1088/clarity-skill-haven/core/store"
	"github.com/Veronica1088/clarity-skill-haven/core/txn"
)

// Step is a context of execution. It contains the transactions that have been
// accepted before the current one in the same block.
type Step struct {
	Previous []txn.Transaction
	Current  txn.Transaction
}

// Result is the result of a transaction execution.
type Result struct {
	// Accepted is the success state of the transaction.
	Accepted bool

	// Message gives a change to the execution to explain why a transaction has
	// failed.
	Message string

	// Code is the reason code of a rejected transaction, or zero when the
	// execution did not provide one.
	Code uint32

	// Value is the JSON encoded value returned by an accepted transaction.
	Value []byte
}

// Coded is implemented by the errors that carry a reason code for the caller.
type Coded interface {
	error

	ErrorCode() uint32
}

// Service is the execution service that defines the primitives to execute a
// transaction.
type Service interface {
	// Execute must apply the transaction to the snapshot and return the result
	// of it. An error is returned only for failures unrelated to the
	// transaction itself.
	Execute(snap store.Snapshot, step Step) (Result, error)
}
