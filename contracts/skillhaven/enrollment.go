package skillhaven

import (
	"encoding/binary"
	"encoding/json"

	"github.com/Veronica1088/clarity-skill-haven/contracts/coin"
	"github.com/Veronica1088/clarity-skill-haven/contracts/skillhaven/types"
	"github.com/Veronica1088/clarity-skill-haven/core/access"
	"github.com/Veronica1088/clarity-skill-haven/core/execution"
	"github.com/Veronica1088/clarity-skill-haven/core/store"
	"github.com/Veronica1088/clarity-skill-haven/core/store/prefixed"
	"golang.org/x/xerrors"
)

func enrollmentKey(id uint64, student []byte) []byte {
	key := append([]byte("enrollment:"), make([]byte, 8)...)
	binary.BigEndian.PutUint64(key[len(key)-8:], id)

	key = append(key, ':')
	key = append(key, student...)

	return key
}

// purchaseCourse implements commands. It performs the purchase-course command
// and returns true on success.
func (c marketCommand) purchaseCourse(snap store.Snapshot, step execution.Step) (interface{}, error) {
	id, err := uintArg(step, CourseIDArg)
	if err != nil {
		return nil, err
	}

	err = c.PurchaseCourse(snap, step.Current.GetIdentity(), id)
	if err != nil {
		return nil, err
	}

	return true, nil
}

// getEnrollment implements commands. It performs the get-enrollment command
// and returns the enrollment or nil.
func (c marketCommand) getEnrollment(snap store.Snapshot, step execution.Step) (interface{}, error) {
	text := step.Current.GetArg(StudentArg)
	if len(text) == 0 {
		return nil, xerrors.Errorf("'%s' not found in tx arg: %w", StudentArg, ErrInvalidInput)
	}

	student, err := c.identFac.IdentityOf(text)
	if err != nil {
		return nil, xerrors.Errorf("malformed student '%s': %w", text, ErrInvalidInput)
	}

	id, err := uintArg(step, CourseIDArg)
	if err != nil {
		return nil, err
	}

	return GetEnrollment(snap, student, id)
}

// PurchaseCourse enrolls the student to the course and transfers the price
// from the student to the instructor. The price is not transferred for a free
// course, or when the instructor enrolls to its own course.
func (c Contract) PurchaseCourse(snap store.Snapshot, student access.Identity, id uint64) error {
	studentKey, err := access.Key(student)
	if err != nil {
		return xerrors.Errorf("invalid caller: %w", ErrInvalidInput)
	}

	course, err := GetCourse(snap, id)
	if err != nil {
		return err
	}

	if course == nil {
		return ErrCourseNotFound
	}

	enrollment, err := getEnrollment(snap, enrollmentKey(id, studentKey))
	if err != nil {
		return err
	}

	if enrollment != nil {
		return ErrAlreadyEnrolled
	}

	if course.Price > 0 && course.Instructor != string(studentKey) {
		instructor, err := c.identFac.IdentityOf([]byte(course.Instructor))
		if err != nil {
			return xerrors.Errorf("failed to parse instructor: %v", err)
		}

		err = coin.Transfer(snap, student, instructor, course.Price)
		if xerrors.Is(err, coin.ErrInsufficientFunds) {
			return ErrInsufficientFunds
		}
		if err != nil {
			return xerrors.Errorf("failed to transfer: %v", err)
		}
	}

	enrollment = &types.Enrollment{
		Student:   string(studentKey),
		CourseID:  id,
		Purchased: true,
	}

	err = putEnrollment(snap, *enrollment)
	if err != nil {
		return err
	}

	c.logger.Info().
		Uint64("course", id).
		Uint64("price", course.Price).
		Stringer("student", student).
		Msg("course purchased")

	return nil
}

// GetEnrollment returns the enrollment of the student to the course, or nil
// if the student has not purchased the course.
func GetEnrollment(snap store.Readable, student access.Identity, id uint64) (*types.Enrollment, error) {
	studentKey, err := access.Key(student)
	if err != nil {
		return nil, xerrors.Errorf("invalid student: %v", err)
	}

	return getEnrollment(snap, enrollmentKey(id, studentKey))
}

func getEnrollment(snap store.Readable, key []byte) (*types.Enrollment, error) {
	data, err := prefixed.NewReadable(prefix, snap).Get(key)
	if err != nil {
		return nil, xerrors.Errorf("failed to read enrollment: %v", err)
	}

	if len(data) == 0 {
		return nil, nil
	}

	enrollment := &types.Enrollment{}

	err = json.Unmarshal(data, enrollment)
	if err != nil {
		return nil, xerrors.Errorf("failed to decode enrollment: %v", err)
	}

	return enrollment, nil
}

func putEnrollment(snap store.Snapshot, enrollment types.Enrollment) error {
	data, err := json.Marshal(enrollment)
	if err != nil {
		return xerrors.Errorf("failed to encode enrollment: %v", err)
	}

	key := enrollmentKey(enrollment.CourseID, []byte(enrollment.Student))

	err = prefixed.NewSnapshot(prefix, snap).Set(key, data)
	if err != nil {
		return xerrors.Errorf("failed to store enrollment: %v", err)
	}

	return nil
}
