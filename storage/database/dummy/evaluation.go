package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/kelasi/core/evaluation"
)

type evaluationRepository struct {
	db *DB
}

var _ evaluation.Repository = (*evaluationRepository)(nil) // interface compliance check

func NewEvaluationRepository(db *DB) evaluation.Repository {
	return &evaluationRepository{db: db}
}

// join fills the display names; callers must hold the lock.
func (repo *evaluationRepository) join(ev evaluation.Evaluation) evaluation.Evaluation {
	if teacher, ok := repo.db.users[ev.TeacherID]; ok {
		ev.TeacherName = teacher.Name
	}
	if crs, ok := repo.db.courses[ev.CourseID]; ok {
		ev.CourseName = crs.Name
	}
	return ev
}

func (repo *evaluationRepository) CreateEvaluation(ctx context.Context, ev evaluation.Evaluation) (evaluation.Evaluation, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	ev.ID = uuid.New().String()
	repo.db.evaluations[ev.ID] = &ev
	return repo.join(ev), nil
}

func (repo *evaluationRepository) GetEvaluationByID(ctx context.Context, id string) (evaluation.Evaluation, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if ev, ok := repo.db.evaluations[id]; ok {
		return repo.join(*ev), nil
	}
	return evaluation.Evaluation{}, evaluation.ErrNotFound
}

func (repo *evaluationRepository) FilterEvaluations(ctx context.Context, filter evaluation.QueryFilter) ([]evaluation.Evaluation, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	evaluations := make([]evaluation.Evaluation, 0, len(repo.db.evaluations))
	for _, ev := range repo.db.evaluations {
		if filter.TeacherID != "" && ev.TeacherID != filter.TeacherID {
			continue
		}
		if filter.CourseID != "" && ev.CourseID != filter.CourseID {
			continue
		}
		evaluations = append(evaluations, repo.join(*ev))
	}

	sort.Slice(evaluations, func(i, j int) bool { return evaluations[i].CreatedAt.After(evaluations[j].CreatedAt) })
	return evaluations, nil
}

func (repo *evaluationRepository) DeleteEvaluationsByID(ctx context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.evaluations, id)
	}
	return nil
}
