// Package simple implements a validation service that executes the
// transactions one after the other.
//
// Every transaction runs on a staged snapshot of the state produced by the
// previous accepted ones. A rejected transaction leaves nothing behind.
package simple

import (
	haven "github.com/Veronica1088/clarity-skill-haven"
	"github.com/Veronica1088/clarity-skill-haven/core/execution"
	"github.com/Veronica1088/clarity-skill-haven/core/execution/native"
	"github.com/Veronica1088/clarity-skill-haven/core/store"
	"github.com/Veronica1088/clarity-skill-haven/core/txn"
	"github.com/Veronica1088/clarity-skill-haven/core/validation"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/xerrors"
)

var promCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "skillhaven_validation_transactions_total",
	Help: "total number of transactions processed per contract and status",
}, []string{"contract", "status"})

func init() {
	haven.PromCollectors = append(haven.PromCollectors, promCalls)
}

// errRejected is used to discard the staged snapshot of a rejected
// transaction.
var errRejected = xerrors.New("rejected")

// Service is a standard validation service that will process the batch and
// update the trie accordingly.
//
// - implements validation.Service
type Service struct {
	execution execution.Service
	logger    zerolog.Logger
}

// NewService creates a new validation service.
func NewService(exec execution.Service) Service {
	return Service{
		execution: exec,
		logger:    haven.Logger.With().Str("service", "validation").Logger(),
	}
}

// Validate implements validation.Service. It processes the list of transactions
// in order and returns a bundle of the transaction results with the new trie.
// The given trie is never modified.
func (s Service) Validate(trie store.Trie, txs []txn.Transaction) (validation.Data, store.Trie, error) {
	results := make([]validation.TransactionResult, len(txs))
	accepted := make([]txn.Transaction, 0, len(txs))

	for i, tx := range txs {
		step := execution.Step{
			Previous: accepted,
			Current:  tx,
		}

		var res execution.Result

		next, err := trie.Stage(func(snap store.Snapshot) error {
			var err error
			res, err = s.execution.Execute(snap, step)
			if err != nil {
				return err
			}

			if !res.Accepted {
				return errRejected
			}

			return nil
		})

		if err != nil && err != errRejected {
			// This is a critical error unrelated to the transaction itself.
			return nil, nil, xerrors.Errorf("failed to execute tx: %v", err)
		}

		contract := string(tx.GetArg(native.ContractArg))

		if res.Accepted {
			trie = next
			accepted = append(accepted, tx)

			promCalls.WithLabelValues(contract, "accepted").Inc()
		} else {
			s.logger.Debug().
				Str("contract", contract).
				Uint32("code", res.Code).
				Str("reason", res.Message).
				Msg("transaction rejected")

			promCalls.WithLabelValues(contract, "rejected").Inc()
		}

		results[i] = NewTransactionResult(tx, res)
	}

	return NewData(results), trie, nil
}
