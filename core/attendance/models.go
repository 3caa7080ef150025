package attendance

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/kelasi/core"
)

// Statuses
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusLate    = "late"
)

var Statuses = []string{StatusPresent, StatusAbsent, StatusLate}

const dayLayout = "2006-01-02"

// DayOf buckets a timestamp into its UTC calendar day.
// Records are keyed by (student, course, day); the full timestamp is kept for display only.
func DayOf(t time.Time) string {
	return t.UTC().Format(dayLayout)
}

type Record struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	CourseID  string    `json:"course_id"`
	Date      time.Time `json:"date"` // UTC
	Day       string    `json:"day"`  // YYYY-MM-DD, derived from Date at write time
	Status    string    `json:"status"`
	Justified bool      `json:"justified"`
	Locked    bool      `json:"locked"`
	CreatedAt time.Time `json:"created_at"` // UTC

	// joined for list views
	StudentName string `json:"student_name,omitempty"`
	CourseName  string `json:"course_name,omitempty"`
}

// NewRecord contains information needed to create a single Record directly
// (administrative path; bypasses the roll-call upsert discipline).
type NewRecord struct {
	StudentID string    `json:"student_id" validate:"required"`
	CourseID  string    `json:"course_id" validate:"required"`
	Status    string    `json:"status" validate:"omitempty,attstatus"`
	Date      time.Time `json:"date"`
}

func (nr *NewRecord) Validate(validate *validator.Validate) error {
	nr.Status = core.CleanString(nr.Status, true /* lower */)
	return validate.Struct(nr)
}

// RollCallEntry is one student's status in a roll-call batch.
type RollCallEntry struct {
	StudentID string `json:"student_id" validate:"required"`
	Status    string `json:"status" validate:"omitempty,attstatus"`
}

// RollCall is a batch of statuses for all students of a course on a given date.
type RollCall struct {
	CourseID string          `json:"course_id" validate:"required"`
	Date     time.Time       `json:"date" validate:"required"`
	Entries  []RollCallEntry `json:"entries" validate:"required,min=1,dive"`
}

func (rc *RollCall) Validate(validate *validator.Validate) error {
	for i := range rc.Entries {
		rc.Entries[i].Status = core.CleanString(rc.Entries[i].Status, true /* lower */)
	}
	return validate.Struct(rc)
}

// AlertFailure reports a student whose absence-threshold evaluation failed
// after their attendance was already written.
type AlertFailure struct {
	StudentID string `json:"student_id"`
	Error     string `json:"error"`
}

// RollCallResult is the outcome of a roll-call submission. AlertFailures is a
// partial-success signal: the attendance writes are committed regardless.
type RollCallResult struct {
	Message       string         `json:"message"`
	Records       []Record       `json:"records"`
	AlertFailures []AlertFailure `json:"alert_failures,omitempty"`
}

type QueryFilter struct {
	CourseID  string `query:"course"`
	StudentID string `query:"student"`
	CourseIDs []string
	From      time.Time `query:"from"`
	To        time.Time `query:"to"`
}
