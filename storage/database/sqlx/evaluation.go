package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kelasi/core/evaluation"
)

type evaluationRepository struct {
	db *sqlx.DB
}

var _ evaluation.Repository = (*evaluationRepository)(nil) // interface compliance check

func NewEvaluationRepository(db *sqlx.DB) evaluation.Repository {
	return &evaluationRepository{db: db}
}

type evaluationRow struct {
	ID          string      `db:"id"`
	StudentID   string      `db:"student_id"`
	TeacherID   string      `db:"teacher_id"`
	CourseID    string      `db:"course_id"`
	Rating      int         `db:"rating"`
	Comment     string      `db:"comment"`
	CreatedAt   time.Time   `db:"created_at"`
	TeacherName null.String `db:"teacher_name"`
	CourseName  null.String `db:"course_name"`
}

func (row evaluationRow) toEvaluation() evaluation.Evaluation {
	return evaluation.Evaluation{
		ID:          row.ID,
		StudentID:   row.StudentID,
		TeacherID:   row.TeacherID,
		CourseID:    row.CourseID,
		Rating:      row.Rating,
		Comment:     row.Comment,
		CreatedAt:   row.CreatedAt,
		TeacherName: row.TeacherName.String,
		CourseName:  row.CourseName.String,
	}
}

const evaluationSelect = `
	SELECT e.id, e.student_id, e.teacher_id, e.course_id, e.rating, e.comment, e.created_at,
	       t.name AS teacher_name, c.name AS course_name
	FROM evaluation e
	LEFT JOIN "user" t ON t.id = e.teacher_id
	LEFT JOIN course c ON c.id = e.course_id`

func (repo *evaluationRepository) CreateEvaluation(ctx context.Context, ev evaluation.Evaluation) (evaluation.Evaluation, error) {
	ev.ID = uuid.New().String()
	q := `
		INSERT INTO evaluation (id, student_id, teacher_id, course_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := repo.db.ExecContext(ctx, q,
		ev.ID, ev.StudentID, ev.TeacherID, ev.CourseID, ev.Rating, ev.Comment, ev.CreatedAt)
	if err != nil {
		return evaluation.Evaluation{}, errors.Wrap(err, "creating evaluation")
	}
	return repo.GetEvaluationByID(ctx, ev.ID)
}

func (repo *evaluationRepository) GetEvaluationByID(ctx context.Context, id string) (evaluation.Evaluation, error) {
	var row evaluationRow
	if err := repo.db.GetContext(ctx, &row, evaluationSelect+` WHERE e.id = $1`, id); err != nil {
		if isNoRows(err) {
			return evaluation.Evaluation{}, evaluation.ErrNotFound
		}
		return evaluation.Evaluation{}, errors.Wrap(err, "getting evaluation")
	}
	return row.toEvaluation(), nil
}

func (repo *evaluationRepository) FilterEvaluations(ctx context.Context, filter evaluation.QueryFilter) ([]evaluation.Evaluation, error) {
	q := evaluationSelect + ` WHERE 1=1`
	var args []interface{}

	if filter.TeacherID != "" {
		q += ` AND e.teacher_id = ?`
		args = append(args, filter.TeacherID)
	}
	if filter.CourseID != "" {
		q += ` AND e.course_id = ?`
		args = append(args, filter.CourseID)
	}
	q += ` ORDER BY e.created_at DESC`

	var rows []evaluationRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "filtering evaluations")
	}
	evaluations := make([]evaluation.Evaluation, len(rows))
	for i, row := range rows {
		evaluations[i] = row.toEvaluation()
	}
	return evaluations, nil
}

func (repo *evaluationRepository) DeleteEvaluationsByID(ctx context.Context, ids ...string) error {
	q, args, err := sqlx.In(`DELETE FROM evaluation WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting evaluations")
	}
	return nil
}
