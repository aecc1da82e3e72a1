package skillhaven

import (
	"encoding/binary"
	"encoding/json"
	"strconv"

	"github.com/Veronica1088/clarity-skill-haven/contracts/skillhaven/types"
	"github.com/Veronica1088/clarity-skill-haven/core/access"
	"github.com/Veronica1088/clarity-skill-haven/core/execution"
	"github.com/Veronica1088/clarity-skill-haven/core/store"
	"github.com/Veronica1088/clarity-skill-haven/core/store/prefixed"
	"golang.org/x/xerrors"
)

func ratingKey(id uint64) []byte {
	key := append([]byte("rating:"), make([]byte, 8)...)
	binary.BigEndian.PutUint64(key[len(key)-8:], id)

	return key
}

// rateCourse implements commands. It performs the rate-course command and
// returns true on success.
func (c marketCommand) rateCourse(snap store.Snapshot, step execution.Step) (interface{}, error) {
	id, err := uintArg(step, CourseIDArg)
	if err != nil {
		return nil, err
	}

	raw := step.Current.GetArg(ScoreArg)
	if len(raw) == 0 {
		return nil, xerrors.Errorf("'%s' not found in tx arg: %w", ScoreArg, ErrInvalidInput)
	}

	score, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return nil, xerrors.Errorf("malformed '%s': %w", ScoreArg, ErrInvalidInput)
	}

	err = c.RateCourse(snap, step.Current.GetIdentity(), id, score)
	if err != nil {
		return nil, err
	}

	return true, nil
}

// getCourseRating implements commands. It returns the aggregate of the ratings
// of the course or nil when the course does not exist.
func (c marketCommand) getCourseRating(snap store.Snapshot, step execution.Step) (interface{}, error) {
	id, err := uintArg(step, CourseIDArg)
	if err != nil {
		return nil, err
	}

	return GetCourseRating(snap, id)
}

// RateCourse records the score of the student for a course that it purchased.
// The checks are done in order: the course must exist, the student must be
// enrolled and must not have rated the course yet, and finally the score must
// be within the bounds.
func (c Contract) RateCourse(snap store.Snapshot, student access.Identity, id uint64, score int64) error {
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

	if enrollment == nil || !enrollment.Purchased {
		return ErrNotEnrolled
	}

	if enrollment.IsRated() {
		return ErrAlreadyRated
	}

	if score < MinScore || score > MaxScore {
		return ErrInvalidScore
	}

	rating := uint32(score)
	enrollment.Rating = &rating

	err = putEnrollment(snap, *enrollment)
	if err != nil {
		return err
	}

	aggregate, err := GetCourseRating(snap, id)
	if err != nil {
		return err
	}

	err = putCourseRating(snap, aggregate.Add(rating))
	if err != nil {
		return err
	}

	c.logger.Info().
		Uint64("course", id).
		Uint32("score", rating).
		Stringer("student", student).
		Msg("course rated")

	return nil
}

// GetCourseRating returns the aggregate of the ratings of the course, or nil
// when the course does not exist.
func GetCourseRating(snap store.Readable, id uint64) (*types.CourseRating, error) {
	course, err := GetCourse(snap, id)
	if err != nil {
		return nil, err
	}

	if course == nil {
		return nil, nil
	}

	data, err := prefixed.NewReadable(prefix, snap).Get(ratingKey(id))
	if err != nil {
		return nil, xerrors.Errorf("failed to read rating: %v", err)
	}

	rating := &types.CourseRating{CourseID: id}

	if len(data) == 0 {
		return rating, nil
	}

	err = json.Unmarshal(data, rating)
	if err != nil {
		return nil, xerrors.Errorf("failed to decode rating: %v", err)
	}

	return rating, nil
}

func putCourseRating(snap store.Snapshot, rating types.CourseRating) error {
	data, err := json.Marshal(rating)
	if err != nil {
		return xerrors.Errorf("failed to encode rating: %v", err)
	}

	err = prefixed.NewSnapshot(prefix, snap).Set(ratingKey(rating.CourseID), data)
	if err != nil {
		return xerrors.Errorf("failed to store rating: %v", err)
	}

	return nil
}
