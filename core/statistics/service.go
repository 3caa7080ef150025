package statistics

import (
	"context"
	"math"

	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core/attendance"
	"github.com/trezcool/kelasi/core/course"
	"github.com/trezcool/kelasi/core/user"
)

type (
	// RecordSource serves deduplicated attendance records; implemented by the
	// attendance service so that statistics never double count resubmitted days.
	RecordSource interface {
		Query(ctx context.Context, filter attendance.QueryFilter) ([]attendance.Record, error)
	}

	// UserCounter counts users per role prefix; implemented by the user repository.
	UserCounter interface {
		CountUsersByRole(ctx context.Context, rolePrefix string) (int, error)
	}

	// ClassCounter counts classes; implemented by the class repository.
	ClassCounter interface {
		CountClasses(ctx context.Context) (int, error)
	}

	// CourseDirectory lists courses; implemented by the course service.
	CourseDirectory interface {
		Filter(ctx context.Context, filter course.QueryFilter) ([]course.Course, error)
	}

	Service interface {
		Dashboard(ctx context.Context) (Dashboard, error)
		Query(ctx context.Context, filter Filter) (Report, error)
	}

	service struct {
		records RecordSource
		users   UserCounter
		classes ClassCounter
		courses CourseDirectory
	}
)

var _ Service = (*service)(nil)

func NewService(records RecordSource, users UserCounter, classes ClassCounter, courses CourseDirectory) Service {
	return &service{records: records, users: users, classes: classes, courses: courses}
}

func (svc *service) Dashboard(ctx context.Context) (Dashboard, error) {
	var dash Dashboard
	var err error

	if dash.TotalStudents, err = svc.users.CountUsersByRole(ctx, user.RoleStudent); err != nil {
		return Dashboard{}, errors.Wrap(err, "counting students")
	}
	if dash.TotalTeachers, err = svc.users.CountUsersByRole(ctx, user.RoleTeacher); err != nil {
		return Dashboard{}, errors.Wrap(err, "counting teachers")
	}
	if dash.TotalClasses, err = svc.classes.CountClasses(ctx); err != nil {
		return Dashboard{}, errors.Wrap(err, "counting classes")
	}

	recs, err := svc.records.Query(ctx, attendance.QueryFilter{})
	if err != nil {
		return Dashboard{}, errors.Wrap(err, "querying records")
	}
	crss, err := svc.courses.Filter(ctx, course.QueryFilter{})
	if err != nil {
		return Dashboard{}, errors.Wrap(err, "querying courses")
	}
	classNames := make(map[string]string, len(crss)) // courseID -> class name
	for _, crs := range crss {
		classNames[crs.ID] = crs.ClassName
	}

	var absents int
	perStudent := make(map[string]*TopAbsentee)
	perClass := make(map[string]*TopAbsentee)
	for _, rec := range recs {
		if rec.Status != attendance.StatusAbsent {
			continue
		}
		absents++
		std, ok := perStudent[rec.StudentID]
		if !ok {
			std = &TopAbsentee{ID: rec.StudentID, Name: rec.StudentName}
			perStudent[rec.StudentID] = std
		}
		std.Absences++
		if name := classNames[rec.CourseID]; name != "" {
			cls, ok := perClass[name]
			if !ok {
				cls = &TopAbsentee{Name: name}
				perClass[name] = cls
			}
			cls.Absences++
		}
	}
	dash.GlobalAbsenceRate = rate(absents, len(recs))
	dash.MostAbsentStudent = top(perStudent)
	dash.MostAbsentClass = top(perClass)
	return dash, nil
}

func (svc *service) Query(ctx context.Context, filter Filter) (Report, error) {
	recFilter := attendance.QueryFilter{CourseID: filter.CourseID, From: filter.From, To: filter.To}
	if filter.ClassID != "" {
		crss, err := svc.courses.Filter(ctx, course.QueryFilter{ClassID: filter.ClassID})
		if err != nil {
			return Report{}, errors.Wrap(err, "resolving class courses")
		}
		recFilter.CourseIDs = make([]string, 0, len(crss))
		for _, crs := range crss {
			recFilter.CourseIDs = append(recFilter.CourseIDs, crs.ID)
		}
	}
	recs, err := svc.records.Query(ctx, recFilter)
	if err != nil {
		return Report{}, errors.Wrap(err, "querying records")
	}
	crss, err := svc.courses.Filter(ctx, course.QueryFilter{})
	if err != nil {
		return Report{}, errors.Wrap(err, "querying courses")
	}
	classNames := make(map[string]string, len(crss)) // courseID -> class name
	for _, crs := range crss {
		classNames[crs.ID] = crs.ClassName
	}

	rpt := Report{
		PerCourse: make(map[string]Breakdown),
		PerClass:  make(map[string]Breakdown),
	}
	var monthTotals, monthAbsents [12]int
	for _, rec := range recs {
		rpt.Summary = tally(rpt.Summary, rec.Status)
		if rec.CourseName != "" {
			rpt.PerCourse[rec.CourseName] = tally(rpt.PerCourse[rec.CourseName], rec.Status)
		}
		if name := classNames[rec.CourseID]; name != "" {
			rpt.PerClass[name] = tally(rpt.PerClass[name], rec.Status)
		}
		m := int(rec.Date.UTC().Month()) - 1
		monthTotals[m]++
		if rec.Status == attendance.StatusAbsent {
			monthAbsents[m]++
		}
	}
	rpt.AbsenceRate = rate(rpt.Summary.Absent, rpt.Summary.Total)
	rpt.Monthly = make([]MonthPoint, 12)
	for m := 0; m < 12; m++ {
		rpt.Monthly[m] = MonthPoint{
			Month:        m + 1,
			Absences:     monthAbsents[m],
			PresenceRate: rate(monthTotals[m]-monthAbsents[m], monthTotals[m]),
		}
	}
	return rpt, nil
}

func tally(b Breakdown, status string) Breakdown {
	switch status {
	case attendance.StatusPresent:
		b.Present++
	case attendance.StatusAbsent:
		b.Absent++
	case attendance.StatusLate:
		b.Late++
	}
	b.Total++
	return b
}

// rate returns n/total as a percentage rounded to 1 decimal; 0 when total is 0.
func rate(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(n)/float64(total)*1000) / 10
}

// top picks the entry with the most absences; ties break on name for a
// deterministic result.
func top(m map[string]*TopAbsentee) *TopAbsentee {
	var best *TopAbsentee
	for _, t := range m {
		if best == nil || t.Absences > best.Absences || (t.Absences == best.Absences && t.Name < best.Name) {
			best = t
		}
	}
	return best
}
