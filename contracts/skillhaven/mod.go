// Package skillhaven implements the native contract of the course
// marketplace.
//
// Instructors register priced courses, students purchase them which creates
// an enrollment and moves the price to the instructor, and purchasers rate the
// courses they bought once. Every command is applied on the snapshot of a
// single transaction, which is discarded by the executor when the command
// fails, so that no partial change is ever committed.
package skillhaven

import (
	"strconv"

	haven "github.com/Veronica1088/clarity-skill-haven"
	"github.com/Veronica1088/clarity-skill-haven/core/access"
	"github.com/Veronica1088/clarity-skill-haven/core/execution"
	"github.com/Veronica1088/clarity-skill-haven/core/execution/native"
	"github.com/Veronica1088/clarity-skill-haven/core/store"
	"github.com/rs/zerolog"
	"golang.org/x/xerrors"
)

// commands defines the commands of the contract. This interface helps in
// testing the contract.
type commands interface {
	createCourse(snap store.Snapshot, step execution.Step) (interface{}, error)
	getCourse(snap store.Snapshot, step execution.Step) (interface{}, error)
	getCourseCount(snap store.Snapshot, step execution.Step) (interface{}, error)
	purchaseCourse(snap store.Snapshot, step execution.Step) (interface{}, error)
	getEnrollment(snap store.Snapshot, step execution.Step) (interface{}, error)
	rateCourse(snap store.Snapshot, step execution.Step) (interface{}, error)
	getCourseRating(snap store.Snapshot, step execution.Step) (interface{}, error)
}

const (
	// ContractName is the name of the contract.
	ContractName = "skillhaven.Marketplace"

	// CmdArg is the argument's name to indicate the kind of command we want to
	// run on the contract. Should be one of the Command type.
	CmdArg = "skillhaven:command"

	// TitleArg is the argument's name in the transaction that contains the
	// title of a new course.
	TitleArg = "skillhaven:title"

	// DescriptionArg is the argument's name in the transaction that contains
	// the description of a new course.
	DescriptionArg = "skillhaven:description"

	// PriceArg is the argument's name in the transaction that contains the
	// decimal price of a new course.
	PriceArg = "skillhaven:price"

	// CourseIDArg is the argument's name in the transaction that contains the
	// decimal identifier of a course.
	CourseIDArg = "skillhaven:course-id"

	// StudentArg is the argument's name in the transaction that contains the
	// text representation of a student identity.
	StudentArg = "skillhaven:student"

	// ScoreArg is the argument's name in the transaction that contains the
	// decimal score of a rating.
	ScoreArg = "skillhaven:score"

	prefix = "skillhaven"
)

// Command defines a type of command for the contract.
type Command string

const (
	// CmdCreateCourse registers a new course and returns its identifier.
	CmdCreateCourse Command = "create-course"

	// CmdGetCourse returns the course, or null when it does not exist.
	CmdGetCourse Command = "get-course"

	// CmdGetCourseCount returns the number of registered courses.
	CmdGetCourseCount Command = "get-course-count"

	// CmdPurchaseCourse enrolls the caller to the course and pays the price
	// to the instructor.
	CmdPurchaseCourse Command = "purchase-course"

	// CmdGetEnrollment returns the enrollment of a student, or null when the
	// student has not purchased the course.
	CmdGetEnrollment Command = "get-enrollment"

	// CmdRateCourse records the rating of the caller for a purchased course.
	CmdRateCourse Command = "rate-course"

	// CmdGetCourseRating returns the aggregate of the ratings of a course.
	CmdGetCourseRating Command = "get-course-rating"
)

// Score bounds of a rating, inclusive.
const (
	MinScore = 1
	MaxScore = 5
)

// ErrorCode is the reason code of a rejected transaction.
type ErrorCode uint32

const (
	// ErrInvalidInput is returned for missing, empty, oversized or malformed
	// arguments.
	ErrInvalidInput ErrorCode = 100 + iota

	// ErrCourseNotFound is returned when the course is not registered.
	ErrCourseNotFound

	// ErrAlreadyEnrolled is returned when the caller purchases a course twice.
	ErrAlreadyEnrolled

	// ErrInsufficientFunds is returned when the caller cannot pay the price.
	ErrInsufficientFunds

	// ErrNotEnrolled is returned when the caller rates a course that it did
	// not purchase.
	ErrNotEnrolled

	// ErrAlreadyRated is returned when the caller rates a course twice.
	ErrAlreadyRated

	// ErrInvalidScore is returned when the score is out of bounds.
	ErrInvalidScore
)

var errorNames = map[ErrorCode]string{
	ErrInvalidInput:      "invalid input",
	ErrCourseNotFound:    "course not found",
	ErrAlreadyEnrolled:   "already enrolled",
	ErrInsufficientFunds: "insufficient funds",
	ErrNotEnrolled:       "not enrolled",
	ErrAlreadyRated:      "already rated",
	ErrInvalidScore:      "invalid score",
}

var reasonNames = map[ErrorCode]string{
	ErrInvalidInput:      "InvalidInput",
	ErrCourseNotFound:    "CourseNotFound",
	ErrAlreadyEnrolled:   "AlreadyEnrolled",
	ErrInsufficientFunds: "InsufficientFunds",
	ErrNotEnrolled:       "NotEnrolled",
	ErrAlreadyRated:      "AlreadyRated",
	ErrInvalidScore:      "InvalidScore",
}

// Error implements error.
func (c ErrorCode) Error() string {
	name, found := errorNames[c]
	if !found {
		return "unknown error " + strconv.FormatUint(uint64(c), 10)
	}

	return name
}

// Reason returns the name of the reason, like "CourseNotFound".
func (c ErrorCode) Reason() string {
	name, found := reasonNames[c]
	if !found {
		return "Unknown"
	}

	return name
}

// ErrorCode implements execution.Coded.
func (c ErrorCode) ErrorCode() uint32 {
	return uint32(c)
}

// RegisterContract registers the contract to the given execution service.
func RegisterContract(exec *native.Service, c Contract) {
	exec.Set(ContractName, c)
}

// Contract is the course marketplace smart contract.
//
// - implements native.Contract
type Contract struct {
	// identFac parses the identities of the instructors and the students
	identFac access.IdentityFactory

	// cmd provides the commands that can be executed by this smart contract
	cmd commands

	logger zerolog.Logger
}

// NewContract creates a new marketplace contract. The factory must parse the
// text representation of the identities of the transactions.
func NewContract(f access.IdentityFactory) Contract {
	contract := Contract{
		identFac: f,
		logger:   haven.Logger.With().Str("contract", "skillhaven").Logger(),
	}

	contract.cmd = marketCommand{Contract: &contract}

	return contract
}

// Execute implements native.Contract. It runs the appropriate command.
func (c Contract) Execute(snap store.Snapshot, step execution.Step) (interface{}, error) {
	cmd := step.Current.GetArg(CmdArg)
	if len(cmd) == 0 {
		return nil, xerrors.Errorf("'%s' not found in tx arg: %w", CmdArg, ErrInvalidInput)
	}

	var fn func(store.Snapshot, execution.Step) (interface{}, error)

	switch Command(cmd) {
	case CmdCreateCourse:
		fn = c.cmd.createCourse
	case CmdGetCourse:
		fn = c.cmd.getCourse
	case CmdGetCourseCount:
		fn = c.cmd.getCourseCount
	case CmdPurchaseCourse:
		fn = c.cmd.purchaseCourse
	case CmdGetEnrollment:
		fn = c.cmd.getEnrollment
	case CmdRateCourse:
		fn = c.cmd.rateCourse
	case CmdGetCourseRating:
		fn = c.cmd.getCourseRating
	default:
		return nil, xerrors.Errorf("unknown command '%s': %w", cmd, ErrInvalidInput)
	}

	value, err := fn(snap, step)
	if err != nil {
		return nil, xerrors.Errorf("failed to %s: %w", cmd, err)
	}

	return value, nil
}

// marketCommand implements the commands of the contract.
//
// - implements commands
type marketCommand struct {
	*Contract
}

func uintArg(step execution.Step, key string) (uint64, error) {
	raw := step.Current.GetArg(key)
	if len(raw) == 0 {
		return 0, xerrors.Errorf("'%s' not found in tx arg: %w", key, ErrInvalidInput)
	}

	value, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil {
		return 0, xerrors.Errorf("malformed '%s': %w", key, ErrInvalidInput)
	}

	return value, nil
}
