package skillhaven

import (
	"encoding/binary"
	"encoding/json"

	"github.com/Veronica1088/clarity-skill-haven/contracts/skillhaven/types"
	"github.com/Veronica1088/clarity-skill-haven/core/access"
	"github.com/Veronica1088/clarity-skill-haven/core/execution"
	"github.com/Veronica1088/clarity-skill-haven/core/store"
	"github.com/Veronica1088/clarity-skill-haven/core/store/prefixed"
	"golang.org/x/xerrors"
)

var counterKey = []byte("next-course-id")

func courseKey(id uint64) []byte {
	key := append([]byte("course:"), make([]byte, 8)...)
	binary.BigEndian.PutUint64(key[len(key)-8:], id)

	return key
}

// createCourse implements commands. It performs the create-course command and
// returns the identifier of the new course.
func (c marketCommand) createCourse(snap store.Snapshot, step execution.Step) (interface{}, error) {
	price, err := uintArg(step, PriceArg)
	if err != nil {
		return nil, err
	}

	nc := types.NewCourse{
		Title:       string(step.Current.GetArg(TitleArg)),
		Description: string(step.Current.GetArg(DescriptionArg)),
		Price:       price,
	}

	return c.CreateCourse(snap, step.Current.GetIdentity(), nc)
}

// getCourse implements commands. It performs the get-course command and
// returns the course or nil.
func (c marketCommand) getCourse(snap store.Snapshot, step execution.Step) (interface{}, error) {
	id, err := uintArg(step, CourseIDArg)
	if err != nil {
		return nil, err
	}

	return GetCourse(snap, id)
}

// getCourseCount implements commands. It returns the number of courses.
func (c marketCommand) getCourseCount(snap store.Snapshot, step execution.Step) (interface{}, error) {
	return CourseCount(snap)
}

// CreateCourse registers the course of the instructor and returns its
// identifier. Identifiers are allocated sequentially starting at 1.
func (c Contract) CreateCourse(snap store.Snapshot, instructor access.Identity, nc types.NewCourse) (uint64, error) {
	instructorKey, err := access.Key(instructor)
	if err != nil {
		return 0, xerrors.Errorf("invalid caller: %w", ErrInvalidInput)
	}

	err = nc.Validate()
	if err != nil {
		return 0, xerrors.Errorf("%v: %w", err, ErrInvalidInput)
	}

	id, err := nextCourseID(snap)
	if err != nil {
		return 0, err
	}

	course := types.Course{
		ID:          id,
		Title:       nc.Title,
		Description: nc.Description,
		Price:       nc.Price,
		Instructor:  string(instructorKey),
	}

	data, err := json.Marshal(course)
	if err != nil {
		return 0, xerrors.Errorf("failed to encode course: %v", err)
	}

	snap = prefixed.NewSnapshot(prefix, snap)

	err = snap.Set(courseKey(id), data)
	if err != nil {
		return 0, xerrors.Errorf("failed to store course: %v", err)
	}

	next := make([]byte, 8)
	binary.BigEndian.PutUint64(next, id+1)

	err = snap.Set(counterKey, next)
	if err != nil {
		return 0, xerrors.Errorf("failed to store counter: %v", err)
	}

	c.logger.Info().
		Uint64("course", id).
		Uint64("price", nc.Price).
		Stringer("instructor", instructor).
		Msg("course created")

	return id, nil
}

// GetCourse returns the course with the identifier, or nil when it does not
// exist.
func GetCourse(snap store.Readable, id uint64) (*types.Course, error) {
	data, err := prefixed.NewReadable(prefix, snap).Get(courseKey(id))
	if err != nil {
		return nil, xerrors.Errorf("failed to read course: %v", err)
	}

	if len(data) == 0 {
		return nil, nil
	}

	course := &types.Course{}

	err = json.Unmarshal(data, course)
	if err != nil {
		return nil, xerrors.Errorf("failed to decode course: %v", err)
	}

	return course, nil
}

// CourseCount returns the number of registered courses.
func CourseCount(snap store.Readable) (uint64, error) {
	next, err := nextCourseID(snap)
	if err != nil {
		return 0, err
	}

	return next - 1, nil
}

func nextCourseID(snap store.Readable) (uint64, error) {
	value, err := prefixed.NewReadable(prefix, snap).Get(counterKey)
	if err != nil {
		return 0, xerrors.Errorf("failed to read counter: %v", err)
	}

	if len(value) == 0 {
		return 1, nil
	}

	if len(value) != 8 {
		return 0, xerrors.Errorf("corrupted counter of %d bytes", len(value))
	}

	return binary.BigEndian.Uint64(value), nil
}
