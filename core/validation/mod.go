// Package validation defines the validator of a block of transactions.
package validation

import (
	"github.com/Veronica1088/clarity-skill-haven/core/execution"
	"github.com/Veronica1088/clarity-skill-haven/core/store"
	"github.com/Veronica1088/clarity-skill-haven/core/txn"
)

// TransactionResult is the result of the processing of a single transaction.
type TransactionResult interface {
	GetTransaction() txn.Transaction

	// GetStatus returns true if the transaction is accepted, otherwise false
	// with the reason.
	GetStatus() (bool, string)

	// GetResult returns the complete result of the execution.
	GetResult() execution.Result
}

// Data is the result of a validation.
type Data interface {
	GetTransactionResults() []TransactionResult
}

// Service is the validation service that will process a batch of transactions
// into a validated data that can be used as a payload of a block.
type Service interface {
	// Validate applies the transactions in order and returns the results with
	// the trie that contains the changes of the accepted ones.
	Validate(store.Trie, []txn.Transaction) (Data, store.Trie, error)
}
