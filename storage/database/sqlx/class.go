package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core/class"
)

type classRepository struct {
	db *sqlx.DB
}

var _ class.Repository = (*classRepository)(nil) // interface compliance check

func NewClassRepository(db *sqlx.DB) class.Repository {
	return &classRepository{db: db}
}

type classRow struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
}

func (row classRow) toClass() class.Class {
	return class.Class{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		CreatedAt:   row.CreatedAt,
	}
}

func (repo *classRepository) CheckClassNameUniqueness(ctx context.Context, name string, excludedClasses ...class.Class) error {
	q := `SELECT COUNT(*) FROM class WHERE name = ?`
	args := []interface{}{name}
	if len(excludedClasses) > 0 {
		ids := make([]string, 0, len(excludedClasses))
		for _, cls := range excludedClasses {
			ids = append(ids, cls.ID)
		}
		q += ` AND id NOT IN (?)`
		args = append(args, ids)
	}
	q, args, err := sqlx.In(q, args...)
	if err != nil {
		return errors.Wrap(err, "building uniqueness query")
	}

	var count int
	if err = repo.db.GetContext(ctx, &count, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "checking uniqueness")
	}
	if count > 0 {
		return class.ErrNameExists
	}
	return nil
}

func (repo *classRepository) CreateClass(ctx context.Context, cls class.Class) (class.Class, error) {
	cls.ID = uuid.New().String()
	q := `INSERT INTO class (id, name, description, created_at) VALUES ($1, $2, $3, $4)`
	if _, err := repo.db.ExecContext(ctx, q, cls.ID, cls.Name, cls.Description, cls.CreatedAt); err != nil {
		if isUniqueViolation(err, "class_name_key") {
			return class.Class{}, class.ErrNameExists
		}
		return class.Class{}, errors.Wrap(err, "creating class")
	}
	return cls, nil
}

func (repo *classRepository) GetClassByID(ctx context.Context, id string) (class.Class, error) {
	var row classRow
	q := `SELECT id, name, description, created_at FROM class WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		if isNoRows(err) {
			return class.Class{}, class.ErrNotFound
		}
		return class.Class{}, errors.Wrap(err, "getting class")
	}
	return row.toClass(), nil
}

func (repo *classRepository) QueryAllClasses(ctx context.Context) ([]class.Class, error) {
	var rows []classRow
	q := `SELECT id, name, description, created_at FROM class ORDER BY name`
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying classes")
	}
	classes := make([]class.Class, len(rows))
	for i, row := range rows {
		classes[i] = row.toClass()
	}
	return classes, nil
}

func (repo *classRepository) CountClasses(ctx context.Context) (int, error) {
	var count int
	if err := repo.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM class`); err != nil {
		return 0, errors.Wrap(err, "counting classes")
	}
	return count, nil
}

func (repo *classRepository) UpdateClass(ctx context.Context, cls class.Class) (class.Class, error) {
	q := `
		UPDATE class
		SET name = COALESCE(NULLIF($2, ''), name),
		    description = COALESCE(NULLIF($3, ''), description)
		WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, q, cls.ID, cls.Name, cls.Description)
	if err != nil {
		if isUniqueViolation(err, "class_name_key") {
			return class.Class{}, class.ErrNameExists
		}
		return class.Class{}, errors.Wrap(err, "updating class")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return class.Class{}, class.ErrNotFound
	}
	return repo.GetClassByID(ctx, cls.ID)
}

func (repo *classRepository) DeleteClassesByID(ctx context.Context, ids ...string) error {
	q, args, err := sqlx.In(`DELETE FROM class WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting classes")
	}
	return nil
}
