package alert

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/kelasi/core"
)

// Categories
const (
	CategoryAbsenceThreshold = "absence_threshold"
	CategorySummons          = "summons"
	CategoryCustom           = "custom"
)

// Alert targets exactly one of StudentID or TeacherID.
type Alert struct {
	ID        string    `json:"id"`
	CourseID  string    `json:"course_id"`
	StudentID string    `json:"student_id,omitempty"`
	TeacherID string    `json:"teacher_id,omitempty"`
	Category  string    `json:"category"`
	Threshold int       `json:"threshold,omitempty"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"` // UTC

	// joined for list views
	StudentName string `json:"student_name,omitempty"`
	TeacherName string `json:"teacher_name,omitempty"`
	CourseName  string `json:"course_name,omitempty"`
}

// NewAlert contains information needed to create a custom Alert.
// Exactly one of StudentID or TeacherID must be set.
type NewAlert struct {
	CourseID  string `json:"course_id" validate:"required"`
	StudentID string `json:"student_id"`
	TeacherID string `json:"teacher_id"`
	Message   string `json:"message" validate:"required"`
}

func (na *NewAlert) Validate(validate *validator.Validate) error {
	na.Message = core.CleanString(na.Message)
	if err := validate.Struct(na); err != nil {
		return err
	}
	if (na.StudentID == "") == (na.TeacherID == "") {
		return core.NewValidationError(ErrInvalidTarget)
	}
	return nil
}

// NewSummons contains information needed to summon a teacher following a report.
type NewSummons struct {
	TeacherID string `json:"teacher_id" validate:"required"`
	CourseID  string `json:"course_id" validate:"required"`
	Message   string `json:"message" validate:"required"`
}

func (ns *NewSummons) Validate(validate *validator.Validate) error {
	ns.Message = core.CleanString(ns.Message)
	return validate.Struct(ns)
}

type QueryFilter struct {
	StudentID string `query:"student"`
	TeacherID string `query:"teacher"`
	Category  string `query:"category"`
}
