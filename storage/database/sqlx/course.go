package sqlxrepos

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kelasi/core/course"
)

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *sqlx.DB) course.Repository {
	return &courseRepository{db: db}
}

type courseRow struct {
	ID          string      `db:"id"`
	Name        string      `db:"name"`
	TeacherID   string      `db:"teacher_id"`
	ClassID     string      `db:"class_id"`
	Description string      `db:"description"`
	CreatedAt   time.Time   `db:"created_at"`
	TeacherName null.String `db:"teacher_name"`
	ClassName   null.String `db:"class_name"`
}

func (row courseRow) toCourse() course.Course {
	return course.Course{
		ID:          row.ID,
		Name:        row.Name,
		TeacherID:   row.TeacherID,
		ClassID:     row.ClassID,
		Description: row.Description,
		CreatedAt:   row.CreatedAt,
		TeacherName: row.TeacherName.String,
		ClassName:   row.ClassName.String,
	}
}

const courseSelect = `
	SELECT c.id, c.name, c.teacher_id, c.class_id, c.description, c.created_at,
	       u.name AS teacher_name, cl.name AS class_name
	FROM course c
	LEFT JOIN "user" u ON u.id = c.teacher_id
	LEFT JOIN class cl ON cl.id = c.class_id`

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	crs.ID = uuid.New().String()
	q := `INSERT INTO course (id, name, teacher_id, class_id, description, created_at) VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := repo.db.ExecContext(ctx, q, crs.ID, crs.Name, crs.TeacherID, crs.ClassID, crs.Description, crs.CreatedAt); err != nil {
		return course.Course{}, errors.Wrap(err, "creating course")
	}
	return repo.GetCourseByID(ctx, crs.ID)
}

func (repo *courseRepository) GetCourseByID(ctx context.Context, id string) (course.Course, error) {
	var row courseRow
	if err := repo.db.GetContext(ctx, &row, courseSelect+` WHERE c.id = $1`, id); err != nil {
		if isNoRows(err) {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, errors.Wrap(err, "getting course")
	}
	return row.toCourse(), nil
}

func (repo *courseRepository) FilterCourses(ctx context.Context, filter course.QueryFilter) ([]course.Course, error) {
	q := courseSelect + ` WHERE 1=1`
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.ClassID != "" {
		q += ` AND c.class_id = ` + arg(filter.ClassID)
	}
	if filter.TeacherID != "" {
		q += ` AND c.teacher_id = ` + arg(filter.TeacherID)
	}
	q += ` ORDER BY c.name`

	var rows []courseRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "filtering courses")
	}
	courses := make([]course.Course, len(rows))
	for i, row := range rows {
		courses[i] = row.toCourse()
	}
	return courses, nil
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	q := `
		UPDATE course
		SET name = COALESCE(NULLIF($2, ''), name),
		    teacher_id = COALESCE(NULLIF($3, ''), teacher_id),
		    class_id = COALESCE(NULLIF($4, ''), class_id),
		    description = COALESCE(NULLIF($5, ''), description)
		WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, q, crs.ID, crs.Name, crs.TeacherID, crs.ClassID, crs.Description)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "updating course")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.Course{}, course.ErrNotFound
	}
	return repo.GetCourseByID(ctx, crs.ID)
}

func (repo *courseRepository) DeleteCoursesByID(ctx context.Context, ids ...string) error {
	q, args, err := sqlx.In(`DELETE FROM course WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting courses")
	}
	return nil
}
