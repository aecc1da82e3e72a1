package scenario

import (
	"bytes"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Veronica1088/clarity-skill-haven/ledger"
	"github.com/stretchr/testify/require"
)

const pottery = `
wallets: 2
balance: 1000
blocks:
  - calls:
      - sender: deployer
        command: create-course
        title: Learn Pottery
        description: A comprehensive course on pottery making
        price: 100
        expect: ok
      - sender: wallet_1
        command: get-course
        course: 1
        expect: ok
  - calls:
      - sender: wallet_1
        command: get-course
        course: 1
        expect: ok
      - sender: wallet_1
        command: purchase-course
        course: 1
        expect: ok
      - sender: wallet_1
        command: purchase-course
        course: 1
        expect: AlreadyEnrolled
  - calls:
      - sender: wallet_1
        command: rate-course
        course: 1
        score: 5
        expect: ok
      - sender: wallet_2
        command: rate-course
        course: 1
        score: 5
        expect: 104
  - calls:
      - sender: wallet_1
        command: get-enrollment
        student: wallet_1
        course: 1
      - sender: wallet_2
        command: BALANCE
        account: deployer
      - sender: wallet_2
        command: TRANSFER
        recipient: wallet_1
        amount: 5000
        expect: insufficient funds
`

func TestRun_Pottery(t *testing.T) {
	s, err := Parse([]byte(pottery))
	require.NoError(t, err)
	require.Equal(t, 2, s.Wallets)
	require.Len(t, s.Blocks, 4)

	devnet, err := ledger.NewDevnet(s.Wallets, s.Balance)
	require.NoError(t, err)

	out := new(bytes.Buffer)

	outcomes, err := Run(devnet, s, out)
	require.NoError(t, err)
	require.Len(t, outcomes, 10)

	// The query observes the course created earlier in the same block.
	require.Equal(t, "1", outcomes[0].Value)
	require.Contains(t, outcomes[1].Value, `"title":"Learn Pottery"`)
	require.Equal(t, uint64(1), outcomes[1].Block)

	require.Contains(t, outcomes[2].Value, `"title":"Learn Pottery"`)
	require.Equal(t, uint32(102), outcomes[4].Code)
	require.Equal(t, uint32(104), outcomes[6].Code)

	require.Contains(t, outcomes[7].Value, `"rating":5`)
	require.Equal(t, "1100", outcomes[8].Value)
	require.Equal(t, uint32(1), outcomes[9].Code)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 10)
	require.Equal(t, "#1 deployer create-course -> 1", lines[0])
	require.True(t, strings.HasPrefix(lines[1], "#1 wallet_1 get-course -> {"))
	require.Equal(t, "#2 wallet_1 purchase-course -> err 102 (already enrolled)", lines[4])
	require.Equal(t, uint64(4), devnet.Height())
}

func TestRun_UnmetExpectation(t *testing.T) {
	s, err := Parse([]byte(`
blocks:
  - calls:
      - sender: wallet_1
        command: purchase-course
        course: 1
        expect: ok
`))
	require.NoError(t, err)

	devnet, err := ledger.NewDevnet(s.Wallets, s.Balance)
	require.NoError(t, err)

	_, err = Run(devnet, s, ioutil.Discard)
	require.EqualError(t, err,
		"block 1: purchase-course by wallet_1: expected success but got: "+
			"failed to purchase-course: course not found")

	s.Blocks[0].Calls[0].Expect = "already enrolled"

	_, err = Run(devnet, s, ioutil.Discard)
	require.EqualError(t, err,
		"block 2: purchase-course by wallet_1: expected 'already enrolled' but got 'course not found'")

	s.Blocks[0].Calls[0].Command = "create-course"
	s.Blocks[0].Calls[0].Title = "t"
	s.Blocks[0].Calls[0].Description = "d"

	_, err = Run(devnet, s, ioutil.Discard)
	require.EqualError(t, err,
		"block 3: create-course by wallet_1: expected 'already enrolled' but succeeded")
}

func TestRun_ReadAfterWrite(t *testing.T) {
	s, err := Parse([]byte(`
blocks:
  - calls:
      - sender: deployer
        command: create-course
        title: Learn Pottery
        description: A comprehensive course on pottery making
        price: 100
      - sender: wallet_1
        command: purchase-course
        course: 1
      - sender: wallet_1
        command: get-enrollment
        student: wallet_1
        course: 1
      - sender: wallet_1
        command: get-course-count
`))
	require.NoError(t, err)

	devnet, err := ledger.NewDevnet(s.Wallets, s.Balance)
	require.NoError(t, err)

	outcomes, err := Run(devnet, s, ioutil.Discard)
	require.NoError(t, err)
	require.Len(t, outcomes, 4)

	for _, o := range outcomes {
		require.True(t, o.Accepted, o.Message)
		require.Equal(t, uint64(1), o.Block)
	}

	require.Contains(t, outcomes[2].Value, `"purchased":true`)
	require.Equal(t, "1", outcomes[3].Value)
	require.Equal(t, uint64(1), devnet.Height())
}

func TestOutcome_Matches(t *testing.T) {
	o := Outcome{Call: Call{Command: "purchase-course"}, Code: 102}
	require.True(t, o.matches("AlreadyEnrolled"))
	require.True(t, o.matches("already enrolled"))
	require.True(t, o.matches("102"))
	require.False(t, o.matches("NotEnrolled"))
	require.False(t, o.matches("104"))

	o = Outcome{Call: Call{Command: "TRANSFER"}, Code: 1}
	require.True(t, o.matches("InsufficientFunds"))
	require.True(t, o.matches("1"))
	require.False(t, o.matches("InvalidInput"))
}

func TestRun_InvalidCalls(t *testing.T) {
	devnet, err := ledger.NewDevnet(1, 10)
	require.NoError(t, err)

	calls := []struct {
		call     Call
		expected string
	}{
		{Call{Command: "fake"}, "invalid call 'fake': unknown command"},
		{
			Call{Command: "get-enrollment", Student: "nobody"},
			"invalid call 'get-enrollment': unknown student 'nobody'",
		},
		{
			Call{Command: "TRANSFER", Recipient: "nobody"},
			"invalid call 'TRANSFER': unknown recipient 'nobody'",
		},
		{Call{Command: "BALANCE"}, "invalid call 'BALANCE': unknown account ''"},
		{
			Call{Command: "purchase-course", Sender: "nobody"},
			"failed to make tx: unknown wallet 'nobody'",
		},
		{
			Call{Command: "get-course", Sender: "nobody"},
			"failed to make tx: unknown wallet 'nobody'",
		},
	}

	for _, c := range calls {
		s := Scenario{Blocks: []Block{{Calls: []Call{c.call}}}}

		_, err = Run(devnet, s, ioutil.Discard)
		require.EqualError(t, err, c.expected)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yml")
	require.NoError(t, ioutil.WriteFile(path, []byte(pottery), 0644))

	s, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, uint64(1000), s.Balance)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to read file")

	_, err = Parse([]byte("unknown: field"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to unmarshal scenario")

	s, err = Parse([]byte("blocks: []"))
	require.NoError(t, err)
	require.Equal(t, ledger.DefaultBalance, s.Balance)
}
