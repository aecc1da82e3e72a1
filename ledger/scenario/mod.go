// Package scenario reads a list of calls from a YAML document and plays them
// on a development network.
//
// A scenario looks like:
//
// 	wallets: 2
// 	balance: 1000
// 	blocks:
// 	  - calls:
// 	      - sender: deployer
// 	        command: create-course
// 	        title: Learn Pottery
// 	        description: A comprehensive course on pottery making
// 	        price: 100
// 	  - calls:
// 	      - sender: wallet_1
// 	        command: purchase-course
// 	        course: 1
// 	        expect: ok
//
// Every block is mined with its calls in order, the read-only ones included,
// so that a call observes the effects of the calls before it.
package scenario

import (
	"fmt"
	"io"
	"io/ioutil"
	"strconv"

	"github.com/Veronica1088/clarity-skill-haven/contracts/coin"
	"github.com/Veronica1088/clarity-skill-haven/contracts/skillhaven"
	"github.com/Veronica1088/clarity-skill-haven/core/txn"
	"github.com/Veronica1088/clarity-skill-haven/ledger"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v2"
)

// Expectation of a call that succeeds.
const expectOK = "ok"

// Scenario is the list of blocks to mine on a development network.
type Scenario struct {
	Wallets int     `yaml:"wallets"`
	Balance uint64  `yaml:"balance"`
	Blocks  []Block `yaml:"blocks"`
}

// Block is a list of calls mined together.
type Block struct {
	Calls []Call `yaml:"calls"`
}

// Call is a single call of a wallet. The fields are used depending on the
// command.
type Call struct {
	Sender      string `yaml:"sender"`
	Command     string `yaml:"command"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Price       uint64 `yaml:"price"`
	Course      uint64 `yaml:"course"`
	Student     string `yaml:"student"`
	Score       int64  `yaml:"score"`
	Recipient   string `yaml:"recipient"`
	Amount      uint64 `yaml:"amount"`
	Account     string `yaml:"account"`

	// Expect is either "ok" or the expected error, given by its reason name
	// like "AlreadyEnrolled", its message like "already enrolled" or its
	// code. It is not checked when empty.
	Expect string `yaml:"expect"`
}

// Load reads the scenario from the file.
func Load(path string) (Scenario, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return Scenario{}, xerrors.Errorf("failed to read file: %v", err)
	}

	return Parse(data)
}

// Parse decodes the scenario from the YAML document.
func Parse(data []byte) (Scenario, error) {
	s := Scenario{
		Wallets: 2,
		Balance: ledger.DefaultBalance,
	}

	err := yaml.UnmarshalStrict(data, &s)
	if err != nil {
		return s, xerrors.Errorf("failed to unmarshal scenario: %v", err)
	}

	return s, nil
}

// Outcome is the result of a call of the scenario.
type Outcome struct {
	Block    uint64
	Call     Call
	Accepted bool
	Code     uint32
	Value    string
	Message  string
}

// Run plays the scenario on the development network and writes a line per call
// into the output. The calls of a block are mined in order so that every call
// observes the effects of the previous ones. It returns an error when a call
// does not meet its expectation.
func Run(devnet *ledger.Devnet, s Scenario, out io.Writer) ([]Outcome, error) {
	outcomes := []Outcome{}

	for _, block := range s.Blocks {
		if len(block.Calls) == 0 {
			continue
		}

		txs := make([]txn.Transaction, 0, len(block.Calls))

		for _, call := range block.Calls {
			args, err := makeArgs(devnet, call)
			if err != nil {
				return outcomes, xerrors.Errorf("invalid call '%s': %v", call.Command, err)
			}

			tx, err := devnet.Tx(call.Sender, args...)
			if err != nil {
				return outcomes, xerrors.Errorf("failed to make tx: %v", err)
			}

			txs = append(txs, tx)
		}

		mined, err := devnet.MineBlock(txs...)
		if err != nil {
			return outcomes, xerrors.Errorf("failed to mine: %v", err)
		}

		for i, receipt := range mined.Receipts {
			outcome := Outcome{
				Block:    mined.Index,
				Call:     block.Calls[i],
				Accepted: receipt.Accepted,
				Code:     receipt.Code,
				Value:    string(receipt.Value),
				Message:  receipt.Message,
			}

			outcomes = append(outcomes, outcome)

			err = report(out, outcome)
			if err != nil {
				return outcomes, err
			}
		}
	}

	return outcomes, nil
}

func report(out io.Writer, o Outcome) error {
	if o.Accepted {
		fmt.Fprintf(out, "#%d %s %s -> %s\n", o.Block, o.Call.Sender, o.Call.Command, o.Value)
	} else {
		fmt.Fprintf(out, "#%d %s %s -> err %d (%s)\n",
			o.Block, o.Call.Sender, o.Call.Command, o.Code, errorName(o.Call.Command, o.Code))
	}

	return o.check()
}

func (o Outcome) check() error {
	expect := o.Call.Expect

	switch {
	case expect == "":
		return nil
	case expect == expectOK && o.Accepted:
		return nil
	case expect == expectOK:
		return xerrors.Errorf("block %d: %s by %s: expected success but got: %s",
			o.Block, o.Call.Command, o.Call.Sender, o.Message)
	case o.Accepted:
		return xerrors.Errorf("block %d: %s by %s: expected '%s' but succeeded",
			o.Block, o.Call.Command, o.Call.Sender, expect)
	case !o.matches(expect):
		return xerrors.Errorf("block %d: %s by %s: expected '%s' but got '%s'",
			o.Block, o.Call.Command, o.Call.Sender, expect, errorName(o.Call.Command, o.Code))
	}

	return nil
}

// matches returns true when the expectation names the reason of the
// rejection, either by its code, its reason name or its message.
func (o Outcome) matches(expect string) bool {
	if code, err := strconv.ParseUint(expect, 10, 32); err == nil {
		return uint32(code) == o.Code
	}

	return expect == errorName(o.Call.Command, o.Code) ||
		expect == reasonName(o.Call.Command, o.Code)
}

func reasonName(command string, code uint32) string {
	if coin.Command(command) == coin.CmdTransfer || coin.Command(command) == coin.CmdBalance {
		return coin.ErrorCode(code).Reason()
	}

	return skillhaven.ErrorCode(code).Reason()
}

func errorName(command string, code uint32) string {
	if coin.Command(command) == coin.CmdTransfer || coin.Command(command) == coin.CmdBalance {
		return coin.ErrorCode(code).Error()
	}

	return skillhaven.ErrorCode(code).Error()
}

func makeArgs(devnet *ledger.Devnet, call Call) ([]txn.Arg, error) {
	switch skillhaven.Command(call.Command) {
	case skillhaven.CmdCreateCourse:
		return skillhaven.CreateCourseArgs(call.Title, call.Description, call.Price), nil
	case skillhaven.CmdGetCourse:
		return skillhaven.GetCourseArgs(call.Course), nil
	case skillhaven.CmdGetCourseCount:
		return skillhaven.GetCourseCountArgs(), nil
	case skillhaven.CmdPurchaseCourse:
		return skillhaven.PurchaseCourseArgs(call.Course), nil
	case skillhaven.CmdGetEnrollment:
		wallet := devnet.Wallet(call.Student)
		if wallet == nil {
			return nil, xerrors.Errorf("unknown student '%s'", call.Student)
		}

		return skillhaven.GetEnrollmentArgs(wallet.Identity, call.Course)
	case skillhaven.CmdRateCourse:
		return skillhaven.RateCourseArgs(call.Course, call.Score), nil
	case skillhaven.CmdGetCourseRating:
		return skillhaven.GetCourseRatingArgs(call.Course), nil
	}

	switch coin.Command(call.Command) {
	case coin.CmdTransfer:
		wallet := devnet.Wallet(call.Recipient)
		if wallet == nil {
			return nil, xerrors.Errorf("unknown recipient '%s'", call.Recipient)
		}

		return coin.TransferArgs(wallet.Identity, call.Amount)
	case coin.CmdBalance:
		wallet := devnet.Wallet(call.Account)
		if wallet == nil {
			return nil, xerrors.Errorf("unknown account '%s'", call.Account)
		}

		return coin.BalanceArgs(wallet.Identity)
	}

	return nil, xerrors.Errorf("unknown command")
}
