package statistics

import "time"

// Dashboard is the admin landing view.
type Dashboard struct {
	TotalStudents     int          `json:"total_students"`
	TotalTeachers     int          `json:"total_teachers"`
	TotalClasses      int          `json:"total_classes"`
	GlobalAbsenceRate float64      `json:"global_absence_rate"` // percent, 1 decimal
	MostAbsentStudent *TopAbsentee `json:"most_absent_student,omitempty"`
	MostAbsentClass   *TopAbsentee `json:"most_absent_class,omitempty"`
}

type TopAbsentee struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	Absences int    `json:"absences"`
}

type Breakdown struct {
	Present int `json:"present"`
	Absent  int `json:"absent"`
	Late    int `json:"late"`
	Total   int `json:"total"`
}

// MonthPoint is one month of the yearly series; Month runs 1..12.
type MonthPoint struct {
	Month        int     `json:"month"`
	Absences     int     `json:"absences"`
	PresenceRate float64 `json:"presence_rate"` // percent, 1 decimal
}

// Report is the filtered statistics view.
type Report struct {
	Summary     Breakdown            `json:"summary"`
	AbsenceRate float64              `json:"absence_rate"` // percent, 1 decimal
	PerCourse   map[string]Breakdown `json:"per_course"`
	PerClass    map[string]Breakdown `json:"per_class"`
	Monthly     []MonthPoint         `json:"monthly"`
}

type Filter struct {
	ClassID  string    `query:"class"`
	CourseID string    `query:"course"`
	From     time.Time `query:"from"`
	To       time.Time `query:"to"`
}
