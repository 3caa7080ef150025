package course

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/kelasi/core"
)

type Course struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	TeacherID   string    `json:"teacher_id"`
	ClassID     string    `json:"class_id"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"` // UTC

	// joined for list views
	TeacherName string `json:"teacher_name,omitempty"`
	ClassName   string `json:"class_name,omitempty"`
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Name        string `json:"name" validate:"required"`
	TeacherID   string `json:"teacher_id" validate:"required"`
	ClassID     string `json:"class_id" validate:"required"`
	Description string `json:"description"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Description = core.CleanString(nc.Description)
	return validate.Struct(nc)
}

// UpdateCourse defines what information may be provided to modify an existing Course.
type UpdateCourse struct {
	Name        string `json:"name"`
	TeacherID   string `json:"teacher_id"`
	ClassID     string `json:"class_id"`
	Description string `json:"description"`
}

func (uc *UpdateCourse) Validate(origCrs Course, validate *validator.Validate) error {
	if name := core.CleanString(uc.Name); name != "" {
		uc.Name = name
	} else {
		uc.Name = origCrs.Name
	}
	if uc.TeacherID == "" {
		uc.TeacherID = origCrs.TeacherID
	}
	if uc.ClassID == "" {
		uc.ClassID = origCrs.ClassID
	}
	uc.Description = core.CleanString(uc.Description)
	return validate.Struct(uc)
}

type QueryFilter struct {
	ClassID   string `query:"class"`
	TeacherID string `query:"teacher"`
}
