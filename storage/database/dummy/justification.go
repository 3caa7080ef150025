package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/kelasi/core/justification"
)

type justificationRepository struct {
	db *DB
}

var _ justification.Repository = (*justificationRepository)(nil) // interface compliance check

func NewJustificationRepository(db *DB) justification.Repository {
	return &justificationRepository{db: db}
}

// join fills the display names; callers must hold the lock.
func (repo *justificationRepository) join(jst justification.Justification) justification.Justification {
	if std, ok := repo.db.users[jst.StudentID]; ok {
		jst.StudentName = std.Name
	}
	if rec, ok := repo.db.records[jst.RecordID]; ok {
		if crs, ok := repo.db.courses[rec.CourseID]; ok {
			jst.CourseName = crs.Name
		}
	}
	return jst
}

func (repo *justificationRepository) CreateJustification(ctx context.Context, jst justification.Justification) (justification.Justification, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	jst.ID = uuid.New().String()
	repo.db.justifications[jst.ID] = &jst
	return repo.join(jst), nil
}

func (repo *justificationRepository) GetJustificationByID(ctx context.Context, id string) (justification.Justification, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if jst, ok := repo.db.justifications[id]; ok {
		return repo.join(*jst), nil
	}
	return justification.Justification{}, justification.ErrNotFound
}

func (repo *justificationRepository) FilterJustifications(ctx context.Context, filter justification.QueryFilter) ([]justification.Justification, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	justifications := make([]justification.Justification, 0, len(repo.db.justifications))
	for _, jst := range repo.db.justifications {
		if filter.StudentID != "" && jst.StudentID != filter.StudentID {
			continue
		}
		if filter.Status != "" && jst.Status != filter.Status {
			continue
		}
		justifications = append(justifications, repo.join(*jst))
	}

	sort.Slice(justifications, func(i, j int) bool {
		return justifications[i].CreatedAt.After(justifications[j].CreatedAt)
	})
	return justifications, nil
}

func (repo *justificationRepository) UpdateJustification(ctx context.Context, jst justification.Justification) (justification.Justification, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	origJst, ok := repo.db.justifications[jst.ID]
	if !ok {
		return justification.Justification{}, justification.ErrNotFound
	}
	origJst.Status = jst.Status
	origJst.AdminComment = jst.AdminComment
	repo.db.justifications[jst.ID] = origJst
	return repo.join(*origJst), nil
}

func (repo *justificationRepository) DeleteJustificationsByID(ctx context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.justifications, id)
	}
	return nil
}
