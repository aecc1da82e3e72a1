// Package native implements an execution service to run native smart contracts.
//
// A native smart contract is written in Go and packaged with the application.
// The value returned by a contract is encoded in JSON in the result, so that a
// nil value is read as an empty optional by the caller.
package native

import (
	"encoding/json"

	"github.com/Veronica1088/clarity-skill-haven/core/execution"
	"github.com/Veronica1088/clarity-skill-haven/core/store"
	"golang.org/x/xerrors"
)

const (
	// ContractArg is the argument key in the transaction to look up a contract.
	ContractArg = "skillhaven.ContractArg"
)

// Contract is the interface to implement to register a smart contract that will
// be executed natively.
type Contract interface {
	// Execute applies the transaction of the step to the snapshot. The
	// returned value must be encodable in JSON.
	Execute(store.Snapshot, execution.Step) (interface{}, error)
}

// Service is an execution service for packaged applications. Those
// applications have complete access to the snapshot and can directly update
// it.
//
// - implements execution.Service
type Service struct {
	contracts map[string]Contract
}

// NewExecution returns a new native execution. The given service will be
// executed for every incoming transaction.
func NewExecution() *Service {
	return &Service{
		contracts: map[string]Contract{},
	}
}

// Set stores the contract using the name as the key. A transaction can trigger
// this contract by using the same name as the contract argument.
func (ns *Service) Set(name string, contract Contract) {
	ns.contracts[name] = contract
}

// Execute implements execution.Service. It uses the executor to process the
// incoming transaction and return the result. A transaction for an unknown
// contract is rejected.
func (ns *Service) Execute(snap store.Snapshot, step execution.Step) (execution.Result, error) {
	if step.Current == nil {
		return execution.Result{}, xerrors.New("missing transaction")
	}

	name := string(step.Current.GetArg(ContractArg))

	contract := ns.contracts[name]
	if contract == nil {
		res := execution.Result{
			Message: xerrors.Errorf("unknown contract '%s'", name).Error(),
		}

		return res, nil
	}

	value, err := contract.Execute(snap, step)
	if err != nil {
		res := execution.Result{
			Message: err.Error(),
		}

		var coded execution.Coded
		if xerrors.As(err, &coded) {
			res.Code = coded.ErrorCode()
		}

		return res, nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return execution.Result{}, xerrors.Errorf("failed to encode result: %v", err)
	}

	res := execution.Result{
		Accepted: true,
		Value:    data,
	}

	return res, nil
}
