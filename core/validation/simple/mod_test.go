package simple

import (
	"testing"

	"github.com/Veronica1088/clarity-skill-haven/core/execution"
	"github.com/Veronica1088/clarity-skill-haven/core/store"
	"github.com/Veronica1088/clarity-skill-haven/core/store/mem"
	"github.com/Veronica1088/clarity-skill-haven/core/txn"
	"github.com/Veronica1088/clarity-skill-haven/core/txn/basic"
	"github.com/Veronica1088/clarity-skill-haven/internal/testing/fake"
	"github.com/stretchr/testify/require"
)

func TestService_Validate(t *testing.T) {
	srvc := NewService(fakeExec{})

	trie := mem.NewTrie()

	txs := []txn.Transaction{
		makeTx(t, 0, "A", "accept"),
		makeTx(t, 1, "B", "reject"),
		makeTx(t, 2, "C", "accept"),
	}

	data, next, err := srvc.Validate(trie, txs)
	require.NoError(t, err)

	results := data.GetTransactionResults()
	require.Len(t, results, 3)

	accepted, reason := results[0].GetStatus()
	require.True(t, accepted)
	require.Empty(t, reason)
	require.Equal(t, txs[0], results[0].GetTransaction())

	accepted, reason = results[1].GetStatus()
	require.False(t, accepted)
	require.Equal(t, "rejected by fake", reason)
	require.Equal(t, uint32(7), results[1].GetResult().Code)

	require.Equal(t, 1, data.(Data).Rejected())

	value, err := next.Get([]byte("A"))
	require.NoError(t, err)
	require.Equal(t, []byte("accept"), value)

	// The rejected transaction wrote before failing but nothing is kept.
	value, err = next.Get([]byte("B"))
	require.NoError(t, err)
	require.Nil(t, value)

	// The third transaction has seen the first one as previous.
	value, err = next.Get([]byte("previous"))
	require.NoError(t, err)
	require.Equal(t, []byte{1}, value)

	// The original trie is left untouched.
	value, err = trie.Get([]byte("A"))
	require.NoError(t, err)
	require.Nil(t, value)
}

func TestService_Validate_Failure(t *testing.T) {
	srvc := NewService(fakeExec{err: fake.GetError()})

	_, _, err := srvc.Validate(mem.NewTrie(), []txn.Transaction{makeTx(t, 0, "A", "accept")})
	require.EqualError(t, err, fake.Err("failed to execute tx"))
}

func TestService_Validate_Empty(t *testing.T) {
	srvc := NewService(fakeExec{})

	trie := mem.NewTrie()

	data, next, err := srvc.Validate(trie, nil)
	require.NoError(t, err)
	require.Empty(t, data.GetTransactionResults())
	require.Equal(t, trie, next)
}

// -----------------------------------------------------------------------------
// Utility functions

func makeTx(t *testing.T, nonce uint64, key, value string) txn.Transaction {
	tx, err := basic.NewTransaction(nonce, fake.NewIdentity("alice"),
		basic.WithArg("key", []byte(key)), basic.WithArg("value", []byte(value)))
	require.NoError(t, err)

	return tx
}

// fakeExec writes the key/value of the transaction, and rejects the transaction
// after the write when the value is "reject".
type fakeExec struct {
	err error
}

func (e fakeExec) Execute(snap store.Snapshot, step execution.Step) (execution.Result, error) {
	if e.err != nil {
		return execution.Result{}, e.err
	}

	err := snap.Set(step.Current.GetArg("key"), step.Current.GetArg("value"))
	if err != nil {
		return execution.Result{}, err
	}

	err = snap.Set([]byte("previous"), []byte{byte(len(step.Previous))})
	if err != nil {
		return execution.Result{}, err
	}

	if string(step.Current.GetArg("value")) == "reject" {
		return execution.Result{Message: "rejected by fake", Code: 7}, nil
	}

	return execution.Result{Accepted: true}, nil
}
