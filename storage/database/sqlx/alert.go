package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kelasi/core/alert"
)

type alertRepository struct {
	db *sqlx.DB
}

var _ alert.Repository = (*alertRepository)(nil) // interface compliance check

func NewAlertRepository(db *sqlx.DB) alert.Repository {
	return &alertRepository{db: db}
}

type alertRow struct {
	ID          string      `db:"id"`
	CourseID    string      `db:"course_id"`
	StudentID   null.String `db:"student_id"`
	TeacherID   null.String `db:"teacher_id"`
	Category    string      `db:"category"`
	Threshold   int         `db:"threshold"`
	Message     string      `db:"message"`
	Read        bool        `db:"read"`
	CreatedAt   time.Time   `db:"created_at"`
	StudentName null.String `db:"student_name"`
	TeacherName null.String `db:"teacher_name"`
	CourseName  null.String `db:"course_name"`
}

func (row alertRow) toAlert() alert.Alert {
	return alert.Alert{
		ID:          row.ID,
		CourseID:    row.CourseID,
		StudentID:   row.StudentID.String,
		TeacherID:   row.TeacherID.String,
		Category:    row.Category,
		Threshold:   row.Threshold,
		Message:     row.Message,
		Read:        row.Read,
		CreatedAt:   row.CreatedAt,
		StudentName: row.StudentName.String,
		TeacherName: row.TeacherName.String,
		CourseName:  row.CourseName.String,
	}
}

const alertSelect = `
	SELECT a.id, a.course_id, a.student_id, a.teacher_id, a.category, a.threshold, a.message, a.read, a.created_at,
	       s.name AS student_name, t.name AS teacher_name, c.name AS course_name
	FROM alert a
	LEFT JOIN "user" s ON s.id = a.student_id
	LEFT JOIN "user" t ON t.id = a.teacher_id
	LEFT JOIN course c ON c.id = a.course_id`

func (repo *alertRepository) CreateAlert(ctx context.Context, alt alert.Alert) (alert.Alert, error) {
	alt.ID = uuid.New().String()
	q := `
		INSERT INTO alert (id, course_id, student_id, teacher_id, category, threshold, message, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := repo.db.ExecContext(ctx, q,
		alt.ID, alt.CourseID,
		null.NewString(alt.StudentID, alt.StudentID != ""),
		null.NewString(alt.TeacherID, alt.TeacherID != ""),
		alt.Category, alt.Threshold, alt.Message, alt.Read, alt.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "uq_alert_student_threshold") {
			return alert.Alert{}, alert.ErrAlertExists
		}
		return alert.Alert{}, errors.Wrap(err, "creating alert")
	}
	return repo.GetAlertByID(ctx, alt.ID)
}

func (repo *alertRepository) GetAlertByID(ctx context.Context, id string) (alert.Alert, error) {
	var row alertRow
	if err := repo.db.GetContext(ctx, &row, alertSelect+` WHERE a.id = $1`, id); err != nil {
		if isNoRows(err) {
			return alert.Alert{}, alert.ErrNotFound
		}
		return alert.Alert{}, errors.Wrap(err, "getting alert")
	}
	return row.toAlert(), nil
}

func (repo *alertRepository) FilterAlerts(ctx context.Context, filter alert.QueryFilter) ([]alert.Alert, error) {
	q := alertSelect + ` WHERE 1=1`
	var args []interface{}

	if filter.StudentID != "" {
		q += ` AND a.student_id = ?`
		args = append(args, filter.StudentID)
	}
	if filter.TeacherID != "" {
		q += ` AND a.teacher_id = ?`
		args = append(args, filter.TeacherID)
	}
	if filter.Category != "" {
		q += ` AND a.category = ?`
		args = append(args, filter.Category)
	}
	q += ` ORDER BY a.created_at DESC`

	var rows []alertRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "filtering alerts")
	}
	alerts := make([]alert.Alert, len(rows))
	for i, row := range rows {
		alerts[i] = row.toAlert()
	}
	return alerts, nil
}

func (repo *alertRepository) StudentAlertExists(ctx context.Context, studentID, category string) (bool, error) {
	var exists bool
	q := `SELECT EXISTS (SELECT 1 FROM alert WHERE student_id = $1 AND category = $2)`
	if err := repo.db.GetContext(ctx, &exists, q, studentID, category); err != nil {
		return false, errors.Wrap(err, "checking alert")
	}
	return exists, nil
}

func (repo *alertRepository) SetAlertRead(ctx context.Context, id string) (alert.Alert, error) {
	res, err := repo.db.ExecContext(ctx, `UPDATE alert SET read = true WHERE id = $1`, id)
	if err != nil {
		return alert.Alert{}, errors.Wrap(err, "marking alert read")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return alert.Alert{}, alert.ErrNotFound
	}
	return repo.GetAlertByID(ctx, id)
}

func (repo *alertRepository) DeleteAlertsByID(ctx context.Context, ids ...string) error {
	q, args, err := sqlx.In(`DELETE FROM alert WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting alerts")
	}
	return nil
}
