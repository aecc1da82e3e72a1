// Package types defines the records stored by the course marketplace contract
// and the validation of their inputs.
package types

// Course is an immutable priced offering registered by an instructor.
type Course struct {
	ID          uint64 `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       uint64 `json:"price"`
	Instructor  string `json:"instructor"`
}

// NewCourse is the input of a course creation.
type NewCourse struct {
	Title       string `json:"title" validate:"required,max=64,printascii"`
	Description string `json:"description" validate:"required,utf8,max=256"`
	Price       uint64 `json:"price"`
}

// Enrollment links a student to a course once purchased. The rating is nil
// until the student rates the course.
type Enrollment struct {
	Student   string  `json:"student"`
	CourseID  uint64  `json:"courseId"`
	Purchased bool    `json:"purchased"`
	Rating    *uint32 `json:"rating"`
}

// IsRated returns true when the student has already rated the course.
func (e Enrollment) IsRated() bool {
	return e.Rating != nil
}

// CourseRating is the aggregate of the ratings of a course.
type CourseRating struct {
	CourseID uint64 `json:"courseId"`
	Count    uint64 `json:"count"`
	Total    uint64 `json:"total"`
}

// Average returns the mean of the ratings, or zero when the course has never
// been rated.
func (r CourseRating) Average() float64 {
	if r.Count == 0 {
		return 0
	}

	return float64(r.Total) / float64(r.Count)
}

// Add returns the aggregate updated with the score.
func (r CourseRating) Add(score uint32) CourseRating {
	r.Count++
	r.Total += uint64(score)

	return r
}
