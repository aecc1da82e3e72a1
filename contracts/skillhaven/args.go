package skillhaven

import (
	"strconv"

	"github.com/Veronica1088/clarity-skill-haven/core/access"
	"github.com/Veronica1088/clarity-skill-haven/core/execution/native"
	"github.com/Veronica1088/clarity-skill-haven/core/txn"
	"golang.org/x/xerrors"
)

// This file contains the helpers to build the arguments of the transactions
// that call the contract.

func makeArgs(cmd Command, args ...txn.Arg) []txn.Arg {
	return append([]txn.Arg{
		{Key: native.ContractArg, Value: []byte(ContractName)},
		{Key: CmdArg, Value: []byte(cmd)},
	}, args...)
}

func uintValue(value uint64) []byte {
	return []byte(strconv.FormatUint(value, 10))
}

// CreateCourseArgs returns the arguments of a create-course call.
func CreateCourseArgs(title, description string, price uint64) []txn.Arg {
	return makeArgs(CmdCreateCourse,
		txn.Arg{Key: TitleArg, Value: []byte(title)},
		txn.Arg{Key: DescriptionArg, Value: []byte(description)},
		txn.Arg{Key: PriceArg, Value: uintValue(price)},
	)
}

// GetCourseArgs returns the arguments of a get-course call.
func GetCourseArgs(id uint64) []txn.Arg {
	return makeArgs(CmdGetCourse, txn.Arg{Key: CourseIDArg, Value: uintValue(id)})
}

// GetCourseCountArgs returns the arguments of a get-course-count call.
func GetCourseCountArgs() []txn.Arg {
	return makeArgs(CmdGetCourseCount)
}

// PurchaseCourseArgs returns the arguments of a purchase-course call.
func PurchaseCourseArgs(id uint64) []txn.Arg {
	return makeArgs(CmdPurchaseCourse, txn.Arg{Key: CourseIDArg, Value: uintValue(id)})
}

// GetEnrollmentArgs returns the arguments of a get-enrollment call.
func GetEnrollmentArgs(student access.Identity, id uint64) ([]txn.Arg, error) {
	text, err := access.Key(student)
	if err != nil {
		return nil, xerrors.Errorf("invalid student: %v", err)
	}

	args := makeArgs(CmdGetEnrollment,
		txn.Arg{Key: StudentArg, Value: text},
		txn.Arg{Key: CourseIDArg, Value: uintValue(id)},
	)

	return args, nil
}

// RateCourseArgs returns the arguments of a rate-course call.
func RateCourseArgs(id uint64, score int64) []txn.Arg {
	return makeArgs(CmdRateCourse,
		txn.Arg{Key: CourseIDArg, Value: uintValue(id)},
		txn.Arg{Key: ScoreArg, Value: []byte(strconv.FormatInt(score, 10))},
	)
}

// GetCourseRatingArgs returns the arguments of a get-course-rating call.
func GetCourseRatingArgs(id uint64) []txn.Arg {
	return makeArgs(CmdGetCourseRating, txn.Arg{Key: CourseIDArg, Value: uintValue(id)})
}
