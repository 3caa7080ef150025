package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kelasi/core/justification"
)

type justificationRepository struct {
	db *sqlx.DB
}

var _ justification.Repository = (*justificationRepository)(nil) // interface compliance check

func NewJustificationRepository(db *sqlx.DB) justification.Repository {
	return &justificationRepository{db: db}
}

type justificationRow struct {
	ID           string      `db:"id"`
	StudentID    string      `db:"student_id"`
	RecordID     string      `db:"record_id"`
	Reason       string      `db:"reason"`
	Status       string      `db:"status"`
	AdminComment string      `db:"admin_comment"`
	CreatedAt    time.Time   `db:"created_at"`
	StudentName  null.String `db:"student_name"`
	CourseName   null.String `db:"course_name"`
}

func (row justificationRow) toJustification() justification.Justification {
	return justification.Justification{
		ID:           row.ID,
		StudentID:    row.StudentID,
		RecordID:     row.RecordID,
		Reason:       row.Reason,
		Status:       row.Status,
		AdminComment: row.AdminComment,
		CreatedAt:    row.CreatedAt,
		StudentName:  row.StudentName.String,
		CourseName:   row.CourseName.String,
	}
}

const justificationSelect = `
	SELECT j.id, j.student_id, j.record_id, j.reason, j.status, j.admin_comment, j.created_at,
	       u.name AS student_name, c.name AS course_name
	FROM justification j
	LEFT JOIN "user" u ON u.id = j.student_id
	LEFT JOIN attendance_record r ON r.id = j.record_id
	LEFT JOIN course c ON c.id = r.course_id`

func (repo *justificationRepository) CreateJustification(ctx context.Context, jst justification.Justification) (justification.Justification, error) {
	jst.ID = uuid.New().String()
	q := `
		INSERT INTO justification (id, student_id, record_id, reason, status, admin_comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := repo.db.ExecContext(ctx, q,
		jst.ID, jst.StudentID, jst.RecordID, jst.Reason, jst.Status, jst.AdminComment, jst.CreatedAt)
	if err != nil {
		return justification.Justification{}, errors.Wrap(err, "creating justification")
	}
	return repo.GetJustificationByID(ctx, jst.ID)
}

func (repo *justificationRepository) GetJustificationByID(ctx context.Context, id string) (justification.Justification, error) {
	var row justificationRow
	if err := repo.db.GetContext(ctx, &row, justificationSelect+` WHERE j.id = $1`, id); err != nil {
		if isNoRows(err) {
			return justification.Justification{}, justification.ErrNotFound
		}
		return justification.Justification{}, errors.Wrap(err, "getting justification")
	}
	return row.toJustification(), nil
}

func (repo *justificationRepository) FilterJustifications(ctx context.Context, filter justification.QueryFilter) ([]justification.Justification, error) {
	q := justificationSelect + ` WHERE 1=1`
	var args []interface{}

	if filter.StudentID != "" {
		q += ` AND j.student_id = ?`
		args = append(args, filter.StudentID)
	}
	if filter.Status != "" {
		q += ` AND j.status = ?`
		args = append(args, filter.Status)
	}
	q += ` ORDER BY j.created_at DESC`

	var rows []justificationRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "filtering justifications")
	}
	justifications := make([]justification.Justification, len(rows))
	for i, row := range rows {
		justifications[i] = row.toJustification()
	}
	return justifications, nil
}

func (repo *justificationRepository) UpdateJustification(ctx context.Context, jst justification.Justification) (justification.Justification, error) {
	q := `UPDATE justification SET status = $2, admin_comment = $3 WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, q, jst.ID, jst.Status, jst.AdminComment)
	if err != nil {
		return justification.Justification{}, errors.Wrap(err, "updating justification")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return justification.Justification{}, justification.ErrNotFound
	}
	return repo.GetJustificationByID(ctx, jst.ID)
}

func (repo *justificationRepository) DeleteJustificationsByID(ctx context.Context, ids ...string) error {
	q, args, err := sqlx.In(`DELETE FROM justification WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting justifications")
	}
	return nil
}
