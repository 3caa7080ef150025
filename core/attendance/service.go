package attendance

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/course"
	"github.com/trezcool/kelasi/core/user"
)

var (
	// errors
	ErrNotFound         = errors.New("attendance record not found")
	ErrDayLocked        = errors.New("attendance for this day has been validated and can no longer be modified")
	ErrNotCourseTeacher = errors.New("you can only manage attendance for your own courses")
	ErrInvalidStatus    = errors.New(statusText)
)

type (
	Repository interface {
		CreateRecord(ctx context.Context, rec Record) (Record, error)
		GetRecordByID(ctx context.Context, id string) (Record, error)
		// UpsertRecord atomically creates the record or, if one already exists
		// for the same (student, course, day) key, overwrites its status and date.
		// The write must not resurrect more than one row per key.
		UpsertRecord(ctx context.Context, rec Record) (Record, error)
		UpdateRecordStatus(ctx context.Context, id, status string) (Record, error)
		SetRecordJustified(ctx context.Context, id string) (Record, error)
		// FilterRecords applies AND operation on available QueryFilter fields and
		// returns records ordered by date desc, then creation desc.
		FilterRecords(ctx context.Context, filter QueryFilter) ([]Record, error)
		HasLockedRecords(ctx context.Context, courseID, day string) (bool, error)
		// LockRecords marks all records of the course on the given day as locked
		// and reports how many rows changed.
		LockRecords(ctx context.Context, courseID, day string) (int, error)
		CountUnjustifiedAbsences(ctx context.Context, studentID string) (int, error)
		DeleteRecordsByID(ctx context.Context, ids ...string) error
	}

	// CourseDirectory resolves courses; implemented by the course service.
	CourseDirectory interface {
		GetByID(ctx context.Context, id string) (course.Course, error)
	}

	// AlertRule evaluates a student's unjustified absence count against the
	// configured threshold; implemented by the alert service.
	AlertRule interface {
		EvaluateAbsenceThreshold(ctx context.Context, studentID, courseID string) error
	}

	Service interface {
		// SubmitRollCall writes one record per entry for the course and date.
		// Resubmitting the same day overwrites statuses instead of piling up rows.
		SubmitRollCall(ctx context.Context, rc RollCall, teacher user.User) (RollCallResult, error)
		Create(ctx context.Context, nr NewRecord) (Record, error)
		GetByID(ctx context.Context, id string) (Record, error)
		// EditStatus corrects a single record. Locked records are immutable;
		// teachers may only touch records of their own courses.
		EditStatus(ctx context.Context, recordID, status string, actor user.User) (Record, error)
		MarkJustified(ctx context.Context, recordID string) (Record, error)
		// LockDay freezes all records of the course on the day of the given date
		// and returns the number of records locked.
		LockDay(ctx context.Context, courseID string, date time.Time) (int, error)
		// Query returns records matching the filter, deduplicated per
		// (student, course, day) and ordered by date desc, then student name asc.
		Query(ctx context.Context, filter QueryFilter) ([]Record, error)
		// QueryForStudent returns the student's records, deduplicated per
		// (course, day) and ordered by date desc.
		QueryForStudent(ctx context.Context, studentID string) ([]Record, error)
		Delete(ctx context.Context, ids ...string) error
	}

	service struct {
		repo    Repository
		courses CourseDirectory
		alerts  AlertRule
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, courses CourseDirectory, alerts AlertRule) Service {
	return &service{repo: repo, courses: courses, alerts: alerts}
}

func (svc *service) SubmitRollCall(ctx context.Context, rc RollCall, teacher user.User) (RollCallResult, error) {
	crs, err := svc.courses.GetByID(ctx, rc.CourseID)
	if err != nil {
		return RollCallResult{}, err
	}
	// roll-call is the teacher's path; admins use Create directly
	if crs.TeacherID != teacher.ID {
		return RollCallResult{}, ErrNotCourseTeacher
	}

	day := DayOf(rc.Date)
	locked, err := svc.repo.HasLockedRecords(ctx, rc.CourseID, day)
	if err != nil {
		return RollCallResult{}, errors.Wrap(err, "checking day lock")
	}
	if locked {
		return RollCallResult{}, ErrDayLocked
	}

	res := RollCallResult{}
	var absentIDs []string
	absentSeen := make(map[string]bool, len(rc.Entries))
	for _, entry := range rc.Entries {
		status := entry.Status
		if status == "" {
			status = StatusAbsent
		}
		rec := Record{
			StudentID: entry.StudentID,
			CourseID:  rc.CourseID,
			Date:      rc.Date.UTC(),
			Day:       day,
			Status:    status,
			CreatedAt: time.Now().UTC(),
		}
		rec, err = svc.repo.UpsertRecord(ctx, rec)
		if err != nil {
			// writes so far are committed; surface them along with the failure
			res.Message = savedMessage(len(res.Records))
			return res, errors.Wrapf(err, "saving attendance for student %s", entry.StudentID)
		}
		res.Records = append(res.Records, rec)

		if status == StatusAbsent && !absentSeen[entry.StudentID] {
			absentSeen[entry.StudentID] = true
			absentIDs = append(absentIDs, entry.StudentID)
		}
	}

	for _, stdID := range absentIDs {
		if err := svc.alerts.EvaluateAbsenceThreshold(ctx, stdID, rc.CourseID); err != nil {
			res.AlertFailures = append(res.AlertFailures, AlertFailure{StudentID: stdID, Error: err.Error()})
		}
	}

	res.Message = savedMessage(len(res.Records))
	return res, nil
}

func savedMessage(n int) string {
	return fmt.Sprintf("%d attendance record(s) saved for this course and date.", n)
}

func (svc *service) Create(ctx context.Context, nr NewRecord) (Record, error) {
	if _, err := svc.courses.GetByID(ctx, nr.CourseID); err != nil {
		return Record{}, err
	}
	date := nr.Date
	if date.IsZero() {
		date = time.Now()
	}
	status := nr.Status
	if status == "" {
		status = StatusAbsent
	}
	rec := Record{
		StudentID: nr.StudentID,
		CourseID:  nr.CourseID,
		Date:      date.UTC(),
		Day:       DayOf(date),
		Status:    status,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateRecord(ctx, rec)
}

func (svc *service) GetByID(ctx context.Context, id string) (Record, error) {
	return svc.repo.GetRecordByID(ctx, id)
}

func (svc *service) EditStatus(ctx context.Context, recordID, status string, actor user.User) (Record, error) {
	if !IsValidStatus(status) {
		return Record{}, core.NewValidationError(ErrInvalidStatus, core.FieldError{Field: "status", Error: statusText})
	}
	rec, err := svc.repo.GetRecordByID(ctx, recordID)
	if err != nil {
		return Record{}, err
	}
	if rec.Locked {
		return Record{}, ErrDayLocked
	}
	if !actor.IsAdmin() {
		crs, err := svc.courses.GetByID(ctx, rec.CourseID)
		if err != nil {
			return Record{}, err
		}
		if crs.TeacherID != actor.ID {
			return Record{}, ErrNotCourseTeacher
		}
	}
	return svc.repo.UpdateRecordStatus(ctx, recordID, status)
}

func (svc *service) MarkJustified(ctx context.Context, recordID string) (Record, error) {
	return svc.repo.SetRecordJustified(ctx, recordID)
}

func (svc *service) LockDay(ctx context.Context, courseID string, date time.Time) (int, error) {
	if _, err := svc.courses.GetByID(ctx, courseID); err != nil {
		return 0, err
	}
	return svc.repo.LockRecords(ctx, courseID, DayOf(date))
}

func (svc *service) Query(ctx context.Context, filter QueryFilter) ([]Record, error) {
	recs, err := svc.repo.FilterRecords(ctx, filter)
	if err != nil {
		return nil, err
	}
	recs = dedupe(recs, func(rec Record) string { return rec.StudentID + "|" + rec.CourseID + "|" + rec.Day })
	sort.SliceStable(recs, func(i, j int) bool {
		if !recs[i].Date.Equal(recs[j].Date) {
			return recs[i].Date.After(recs[j].Date)
		}
		return recs[i].StudentName < recs[j].StudentName
	})
	return recs, nil
}

func (svc *service) QueryForStudent(ctx context.Context, studentID string) ([]Record, error) {
	recs, err := svc.repo.FilterRecords(ctx, QueryFilter{StudentID: studentID})
	if err != nil {
		return nil, err
	}
	recs = dedupe(recs, func(rec Record) string { return rec.CourseID + "|" + rec.Day })
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Date.After(recs[j].Date) })
	return recs, nil
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteRecordsByID(ctx, ids...)
}

// dedupe keeps the first record seen per key. Input is ordered by date desc,
// creation desc, so the survivor is the most recent write for its key; stores
// that tolerate historical duplicates are thus presented as if upserts had
// always been in effect.
func dedupe(recs []Record, key func(Record) string) []Record {
	seen := make(map[string]bool, len(recs))
	out := recs[:0]
	for _, rec := range recs {
		k := key(rec)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, rec)
	}
	return out
}
