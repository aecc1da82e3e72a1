package ledger

import (
	"encoding/hex"
	"encoding/json"

	"github.com/Veronica1088/clarity-skill-haven/core/execution/native"
	"github.com/Veronica1088/clarity-skill-haven/core/validation"
	"golang.org/x/xerrors"
)

// Receipt is the outcome of a transaction included in a block.
type Receipt struct {
	TxID     string          `json:"txid"`
	Sender   string          `json:"sender"`
	Contract string          `json:"contract"`
	Accepted bool            `json:"accepted"`
	Code     uint32          `json:"code,omitempty"`
	Message  string          `json:"message,omitempty"`
	Value    json.RawMessage `json:"value,omitempty"`
}

// Block is the ordered list of receipts of the transactions mined together,
// and the root of the state after they are applied.
type Block struct {
	Index    uint64    `json:"index"`
	Root     string    `json:"root"`
	Receipts []Receipt `json:"receipts"`
}

// Rejected returns the number of rejected transactions in the block.
func (b Block) Rejected() int {
	n := 0
	for _, r := range b.Receipts {
		if !r.Accepted {
			n++
		}
	}

	return n
}

func newReceipt(res validation.TransactionResult) (Receipt, error) {
	tx := res.GetTransaction()
	result := res.GetResult()

	receipt := Receipt{
		TxID:     hex.EncodeToString(tx.GetID()),
		Contract: string(tx.GetArg(native.ContractArg)),
		Accepted: result.Accepted,
		Code:     result.Code,
		Message:  result.Message,
	}

	if len(result.Value) > 0 {
		receipt.Value = json.RawMessage(result.Value)
	}

	if tx.GetIdentity() != nil {
		sender, err := tx.GetIdentity().MarshalText()
		if err != nil {
			return receipt, xerrors.Errorf("failed to marshal sender: %v", err)
		}

		receipt.Sender = string(sender)
	}

	return receipt, nil
}

// Decode unmarshals the value of an accepted receipt into the given pointer.
func (r Receipt) Decode(v interface{}) error {
	if !r.Accepted {
		return xerrors.Errorf("transaction rejected with code %d: %s", r.Code, r.Message)
	}

	err := json.Unmarshal(r.Value, v)
	if err != nil {
		return xerrors.Errorf("failed to decode value: %v", err)
	}

	return nil
}
