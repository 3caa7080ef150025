package justification

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/kelasi/core"
)

// Statuses
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusRefused  = "refused"
)

type Justification struct {
	ID           string    `json:"id"`
	StudentID    string    `json:"student_id"`
	RecordID     string    `json:"record_id"`
	Reason       string    `json:"reason"`
	Status       string    `json:"status"`
	AdminComment string    `json:"admin_comment,omitempty"`
	CreatedAt    time.Time `json:"created_at"` // UTC

	// joined for list views
	StudentName string `json:"student_name,omitempty"`
	CourseName  string `json:"course_name,omitempty"`
}

// NewJustification contains information a student provides to justify one of
// their absence records.
type NewJustification struct {
	RecordID string `json:"record_id" validate:"required"`
	Reason   string `json:"reason" validate:"required"`
}

func (nj *NewJustification) Validate(validate *validator.Validate) error {
	nj.Reason = core.CleanString(nj.Reason)
	return validate.Struct(nj)
}

// Decision is an admin's ruling on a pending justification.
type Decision struct {
	Status       string `json:"status" validate:"required,oneof=accepted refused"`
	AdminComment string `json:"admin_comment"`
}

func (d *Decision) Validate(validate *validator.Validate) error {
	d.Status = core.CleanString(d.Status, true /* lower */)
	d.AdminComment = core.CleanString(d.AdminComment)
	return validate.Struct(d)
}

type QueryFilter struct {
	StudentID string `query:"student"`
	Status    string `query:"status"`
}
