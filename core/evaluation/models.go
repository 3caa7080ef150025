package evaluation

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/kelasi/core"
)

// Evaluation is a student's anonymous rating of a teacher for a course.
type Evaluation struct {
	ID        string    `json:"id"`
	StudentID string    `json:"-"` // kept for ownership, never serialized
	TeacherID string    `json:"teacher_id"`
	CourseID  string    `json:"course_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"` // UTC

	// joined for list views
	TeacherName string `json:"teacher_name,omitempty"`
	CourseName  string `json:"course_name,omitempty"`
}

// NewEvaluation contains information needed to create a new Evaluation.
type NewEvaluation struct {
	TeacherID string `json:"teacher_id" validate:"required"`
	CourseID  string `json:"course_id" validate:"required"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Comment   string `json:"comment"`
}

func (ne *NewEvaluation) Validate(validate *validator.Validate) error {
	ne.Comment = core.CleanString(ne.Comment)
	return validate.Struct(ne)
}

// NewReport escalates an evaluation: the teacher is summoned with the given message.
type NewReport struct {
	Message string `json:"message" validate:"required"`
}

func (nr *NewReport) Validate(validate *validator.Validate) error {
	nr.Message = core.CleanString(nr.Message)
	return validate.Struct(nr)
}

type QueryFilter struct {
	TeacherID string `query:"teacher"`
	CourseID  string `query:"course"`
}
