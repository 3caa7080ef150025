package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kelasi/core/attendance"
)

type attendanceRepository struct {
	db *sqlx.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *sqlx.DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

type recordRow struct {
	ID          string      `db:"id"`
	StudentID   string      `db:"student_id"`
	CourseID    string      `db:"course_id"`
	Date        time.Time   `db:"date"`
	Day         string      `db:"day"`
	Status      string      `db:"status"`
	Justified   bool        `db:"justified"`
	Locked      bool        `db:"locked"`
	CreatedAt   time.Time   `db:"created_at"`
	StudentName null.String `db:"student_name"`
	CourseName  null.String `db:"course_name"`
}

func (row recordRow) toRecord() attendance.Record {
	return attendance.Record{
		ID:          row.ID,
		StudentID:   row.StudentID,
		CourseID:    row.CourseID,
		Date:        row.Date,
		Day:         row.Day,
		Status:      row.Status,
		Justified:   row.Justified,
		Locked:      row.Locked,
		CreatedAt:   row.CreatedAt,
		StudentName: row.StudentName.String,
		CourseName:  row.CourseName.String,
	}
}

const recordSelect = `
	SELECT r.id, r.student_id, r.course_id, r.date, r.day, r.status, r.justified, r.locked, r.created_at,
	       u.name AS student_name, c.name AS course_name
	FROM attendance_record r
	LEFT JOIN "user" u ON u.id = r.student_id
	LEFT JOIN course c ON c.id = r.course_id`

func (repo *attendanceRepository) CreateRecord(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	rec.ID = uuid.New().String()
	q := `
		INSERT INTO attendance_record (id, student_id, course_id, date, day, status, justified, locked, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := repo.db.ExecContext(ctx, q,
		rec.ID, rec.StudentID, rec.CourseID, rec.Date, rec.Day, rec.Status, rec.Justified, rec.Locked, rec.CreatedAt)
	if err != nil {
		return attendance.Record{}, errors.Wrap(err, "creating record")
	}
	return repo.GetRecordByID(ctx, rec.ID)
}

func (repo *attendanceRepository) GetRecordByID(ctx context.Context, id string) (attendance.Record, error) {
	var row recordRow
	if err := repo.db.GetContext(ctx, &row, recordSelect+` WHERE r.id = $1`, id); err != nil {
		if isNoRows(err) {
			return attendance.Record{}, attendance.ErrNotFound
		}
		return attendance.Record{}, errors.Wrap(err, "getting record")
	}
	return row.toRecord(), nil
}

// UpsertRecord relies on the unique index over (student_id, course_id, day);
// a resubmission lands on the existing row and only refreshes its status and date.
func (repo *attendanceRepository) UpsertRecord(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	q := `
		INSERT INTO attendance_record (id, student_id, course_id, date, day, status, justified, locked, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, false, false, $7)
		ON CONFLICT (student_id, course_id, day)
		DO UPDATE SET status = EXCLUDED.status, date = EXCLUDED.date
		RETURNING id`
	var id string
	err := repo.db.GetContext(ctx, &id, q,
		uuid.New().String(), rec.StudentID, rec.CourseID, rec.Date, rec.Day, rec.Status, rec.CreatedAt)
	if err != nil {
		return attendance.Record{}, errors.Wrap(err, "upserting record")
	}
	return repo.GetRecordByID(ctx, id)
}

func (repo *attendanceRepository) UpdateRecordStatus(ctx context.Context, id, status string) (attendance.Record, error) {
	res, err := repo.db.ExecContext(ctx, `UPDATE attendance_record SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return attendance.Record{}, errors.Wrap(err, "updating record status")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return attendance.Record{}, attendance.ErrNotFound
	}
	return repo.GetRecordByID(ctx, id)
}

func (repo *attendanceRepository) SetRecordJustified(ctx context.Context, id string) (attendance.Record, error) {
	res, err := repo.db.ExecContext(ctx, `UPDATE attendance_record SET justified = true WHERE id = $1`, id)
	if err != nil {
		return attendance.Record{}, errors.Wrap(err, "marking record justified")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return attendance.Record{}, attendance.ErrNotFound
	}
	return repo.GetRecordByID(ctx, id)
}

func (repo *attendanceRepository) FilterRecords(ctx context.Context, filter attendance.QueryFilter) ([]attendance.Record, error) {
	q := recordSelect + ` WHERE 1=1`
	var args []interface{}

	if filter.CourseID != "" {
		q += ` AND r.course_id = ?`
		args = append(args, filter.CourseID)
	}
	if filter.StudentID != "" {
		q += ` AND r.student_id = ?`
		args = append(args, filter.StudentID)
	}
	if len(filter.CourseIDs) > 0 {
		q += ` AND r.course_id IN (?)`
		args = append(args, filter.CourseIDs)
	}
	if !filter.From.IsZero() {
		q += ` AND r.date >= ?`
		args = append(args, filter.From.UTC())
	}
	if !filter.To.IsZero() {
		q += ` AND r.date <= ?`
		args = append(args, filter.To.UTC())
	}
	q += ` ORDER BY r.date DESC, r.created_at DESC`

	q, args, err := sqlx.In(q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "building filter query")
	}

	var rows []recordRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "filtering records")
	}
	records := make([]attendance.Record, len(rows))
	for i, row := range rows {
		records[i] = row.toRecord()
	}
	return records, nil
}

func (repo *attendanceRepository) HasLockedRecords(ctx context.Context, courseID, day string) (bool, error) {
	var exists bool
	q := `SELECT EXISTS (SELECT 1 FROM attendance_record WHERE course_id = $1 AND day = $2 AND locked)`
	if err := repo.db.GetContext(ctx, &exists, q, courseID, day); err != nil {
		return false, errors.Wrap(err, "checking day lock")
	}
	return exists, nil
}

func (repo *attendanceRepository) LockRecords(ctx context.Context, courseID, day string) (int, error) {
	q := `UPDATE attendance_record SET locked = true WHERE course_id = $1 AND day = $2 AND NOT locked`
	res, err := repo.db.ExecContext(ctx, q, courseID, day)
	if err != nil {
		return 0, errors.Wrap(err, "locking records")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "locking records")
	}
	return int(n), nil
}

func (repo *attendanceRepository) CountUnjustifiedAbsences(ctx context.Context, studentID string) (int, error) {
	var count int
	q := `SELECT COUNT(*) FROM attendance_record WHERE student_id = $1 AND status = $2 AND NOT justified`
	if err := repo.db.GetContext(ctx, &count, q, studentID, attendance.StatusAbsent); err != nil {
		return 0, errors.Wrap(err, "counting absences")
	}
	return count, nil
}

func (repo *attendanceRepository) DeleteRecordsByID(ctx context.Context, ids ...string) error {
	q, args, err := sqlx.In(`DELETE FROM attendance_record WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting records")
	}
	return nil
}
