package simple

import (
	"github.com/Veronica1088/clarity-skill-haven/core/execution"
	"github.com/Veronica1088/clarity-skill-haven/core/txn"
	"github.com/Veronica1088/clarity-skill-haven/core/validation"
)

// TransactionResult is the result of a transaction processing. It contains the
// transaction and its state of success.
//
// - implements validation.TransactionResult
type TransactionResult struct {
	tx     txn.Transaction
	result execution.Result
}

// NewTransactionResult creates a new transaction result for the provided
// transaction.
func NewTransactionResult(tx txn.Transaction, res execution.Result) TransactionResult {
	return TransactionResult{
		tx:     tx,
		result: res,
	}
}

// GetTransaction implements validation.TransactionResult. It returns the
// transaction associated to the result.
func (res TransactionResult) GetTransaction() txn.Transaction {
	return res.tx
}

// GetStatus implements validation.TransactionResult. It returns true if the
// transaction has been accepted, otherwise false with the reason.
func (res TransactionResult) GetStatus() (bool, string) {
	return res.result.Accepted, res.result.Message
}

// GetResult implements validation.TransactionResult.
func (res TransactionResult) GetResult() execution.Result {
	return res.result
}

// Data is the validated data of a standard validator. It contains the results
// in the order of the transactions.
//
// - implements validation.Data
type Data struct {
	txs []validation.TransactionResult
}

// NewData creates new validated data from the list of results.
func NewData(results []validation.TransactionResult) Data {
	return Data{
		txs: results,
	}
}

// GetTransactionResults implements validation.Data. It returns the transaction
// results.
func (d Data) GetTransactionResults() []validation.TransactionResult {
	return append([]validation.TransactionResult{}, d.txs...)
}

// Rejected returns the number of rejected transactions.
func (d Data) Rejected() int {
	n := 0
	for _, res := range d.txs {
		accepted, _ := res.GetStatus()
		if !accepted {
			n++
		}
	}

	return n
}
