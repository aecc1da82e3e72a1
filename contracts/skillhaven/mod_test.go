package skillhaven

import (
	"testing"

	"github.com/Veronica1088/clarity-skill-haven/core/execution"
	"github.com/Veronica1088/clarity-skill-haven/core/execution/native"
	"github.com/Veronica1088/clarity-skill-haven/core/store"
	"github.com/Veronica1088/clarity-skill-haven/core/txn"
	"github.com/Veronica1088/clarity-skill-haven/core/txn/basic"
	"github.com/Veronica1088/clarity-skill-haven/internal/testing/fake"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"
)

var (
	instructor = fake.NewIdentity("instructor")
	student    = fake.NewIdentity("student")
	other      = fake.NewIdentity("other")
)

func TestExecute(t *testing.T) {
	contract := NewContract(fake.IdentityFactory{})

	_, err := contract.Execute(fake.NewSnapshot(), makeStep(t, student))
	require.EqualError(t, err, "'skillhaven:command' not found in tx arg: invalid input")
	require.True(t, xerrors.Is(err, ErrInvalidInput))

	_, err = contract.Execute(fake.NewSnapshot(), makeStep(t, student, CmdArg, "fake"))
	require.EqualError(t, err, "unknown command 'fake': invalid input")

	contract.cmd = fakeCmd{err: fake.GetError()}

	for _, cmd := range []Command{
		CmdCreateCourse,
		CmdGetCourse,
		CmdGetCourseCount,
		CmdPurchaseCourse,
		CmdGetEnrollment,
		CmdRateCourse,
		CmdGetCourseRating,
	} {
		_, err = contract.Execute(fake.NewSnapshot(), makeStep(t, student, CmdArg, string(cmd)))
		require.EqualError(t, err, fake.Err("failed to "+string(cmd)))
	}

	contract.cmd = fakeCmd{}

	value, err := contract.Execute(fake.NewSnapshot(), makeStep(t, student, CmdArg, "rate-course"))
	require.NoError(t, err)
	require.Equal(t, "rate-course", value)
}

func TestExecute_CodeIsPreserved(t *testing.T) {
	contract := NewContract(fake.IdentityFactory{})

	_, err := contract.Execute(fake.NewSnapshot(),
		makeStep(t, student, CmdArg, "purchase-course", CourseIDArg, "1"))
	require.EqualError(t, err, "failed to purchase-course: course not found")

	var coded execution.Coded
	require.True(t, xerrors.As(err, &coded))
	require.Equal(t, uint32(101), coded.ErrorCode())
}

func TestErrorCode(t *testing.T) {
	codes := map[ErrorCode]uint32{
		ErrInvalidInput:      100,
		ErrCourseNotFound:    101,
		ErrAlreadyEnrolled:   102,
		ErrInsufficientFunds: 103,
		ErrNotEnrolled:       104,
		ErrAlreadyRated:      105,
		ErrInvalidScore:      106,
	}

	for code, expected := range codes {
		require.Equal(t, expected, code.ErrorCode())
		require.NotContains(t, code.Error(), "unknown")
		require.NotEqual(t, "Unknown", code.Reason())
	}

	require.Equal(t, "unknown error 42", ErrorCode(42).Error())
	require.Equal(t, "AlreadyEnrolled", ErrAlreadyEnrolled.Reason())
	require.Equal(t, "Unknown", ErrorCode(42).Reason())
}

func TestUintArg(t *testing.T) {
	value, err := uintArg(makeStep(t, student, PriceArg, "18446744073709551615"), PriceArg)
	require.NoError(t, err)
	require.Equal(t, ^uint64(0), value)

	_, err = uintArg(makeStep(t, student), PriceArg)
	require.EqualError(t, err, "'skillhaven:price' not found in tx arg: invalid input")

	_, err = uintArg(makeStep(t, student, PriceArg, "-5"), PriceArg)
	require.EqualError(t, err, "malformed 'skillhaven:price': invalid input")

	_, err = uintArg(makeStep(t, student, PriceArg, "18446744073709551616"), PriceArg)
	require.EqualError(t, err, "malformed 'skillhaven:price': invalid input")
}

func TestArgs(t *testing.T) {
	require.Equal(t, []txn.Arg{
		{Key: native.ContractArg, Value: []byte(ContractName)},
		{Key: CmdArg, Value: []byte("create-course")},
		{Key: TitleArg, Value: []byte("Learn Pottery")},
		{Key: DescriptionArg, Value: []byte("desc")},
		{Key: PriceArg, Value: []byte("100")},
	}, CreateCourseArgs("Learn Pottery", "desc", 100))

	require.Len(t, GetCourseArgs(1), 3)
	require.Len(t, GetCourseCountArgs(), 2)
	require.Len(t, PurchaseCourseArgs(1), 3)
	require.Len(t, GetCourseRatingArgs(1), 3)

	args := RateCourseArgs(1, -3)
	require.Equal(t, txn.Arg{Key: ScoreArg, Value: []byte("-3")}, args[3])

	args, err := GetEnrollmentArgs(student, 7)
	require.NoError(t, err)
	require.Equal(t, txn.Arg{Key: StudentArg, Value: []byte("fake:student")}, args[2])
	require.Equal(t, txn.Arg{Key: CourseIDArg, Value: []byte("7")}, args[3])

	_, err = GetEnrollmentArgs(fake.NewBadIdentity(), 1)
	require.EqualError(t, err, fake.Err("invalid student"))
}

func TestRegisterContract(t *testing.T) {
	RegisterContract(native.NewExecution(), Contract{})
}

// -----------------------------------------------------------------------------
// Utility functions

func makeStep(t *testing.T, caller fake.Identity, args ...string) execution.Step {
	return execution.Step{Current: makeTx(t, caller, args...)}
}

func makeTx(t *testing.T, caller fake.Identity, args ...string) txn.Transaction {
	options := []basic.TransactionOption{}
	for i := 0; i < len(args)-1; i += 2 {
		options = append(options, basic.WithArg(args[i], []byte(args[i+1])))
	}

	tx, err := basic.NewTransaction(0, caller, options...)
	require.NoError(t, err)

	return tx
}

func newCommand() marketCommand {
	contract := NewContract(fake.IdentityFactory{})

	return marketCommand{Contract: &contract}
}

type fakeCmd struct {
	err error
}

func (c fakeCmd) createCourse(snap store.Snapshot, step execution.Step) (interface{}, error) {
	return "create-course", c.err
}

func (c fakeCmd) getCourse(snap store.Snapshot, step execution.Step) (interface{}, error) {
	return "get-course", c.err
}

func (c fakeCmd) getCourseCount(snap store.Snapshot, step execution.Step) (interface{}, error) {
	return "get-course-count", c.err
}

func (c fakeCmd) purchaseCourse(snap store.Snapshot, step execution.Step) (interface{}, error) {
	return "purchase-course", c.err
}

func (c fakeCmd) getEnrollment(snap store.Snapshot, step execution.Step) (interface{}, error) {
	return "get-enrollment", c.err
}

func (c fakeCmd) rateCourse(snap store.Snapshot, step execution.Step) (interface{}, error) {
	return "rate-course", c.err
}

func (c fakeCmd) getCourseRating(snap store.Snapshot, step execution.Step) (interface{}, error) {
	return "get-course-rating", c.err
}
