package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/kelasi/core/alert"
)

type alertRepository struct {
	db *DB
}

var _ alert.Repository = (*alertRepository)(nil) // interface compliance check

func NewAlertRepository(db *DB) alert.Repository {
	return &alertRepository{db: db}
}

// join fills the display names; callers must hold the lock.
func (repo *alertRepository) join(alt alert.Alert) alert.Alert {
	if std, ok := repo.db.users[alt.StudentID]; ok {
		alt.StudentName = std.Name
	}
	if teacher, ok := repo.db.users[alt.TeacherID]; ok {
		alt.TeacherName = teacher.Name
	}
	if crs, ok := repo.db.courses[alt.CourseID]; ok {
		alt.CourseName = crs.Name
	}
	return alt
}

func (repo *alertRepository) CreateAlert(ctx context.Context, alt alert.Alert) (alert.Alert, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if alt.Category == alert.CategoryAbsenceThreshold {
		for _, orig := range repo.db.alerts {
			if orig.StudentID == alt.StudentID && orig.Category == alt.Category {
				return alert.Alert{}, alert.ErrAlertExists
			}
		}
	}
	alt.ID = uuid.New().String()
	repo.db.alerts[alt.ID] = &alt
	return repo.join(alt), nil
}

func (repo *alertRepository) GetAlertByID(ctx context.Context, id string) (alert.Alert, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if alt, ok := repo.db.alerts[id]; ok {
		return repo.join(*alt), nil
	}
	return alert.Alert{}, alert.ErrNotFound
}

func (repo *alertRepository) FilterAlerts(ctx context.Context, filter alert.QueryFilter) ([]alert.Alert, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	alerts := make([]alert.Alert, 0, len(repo.db.alerts))
	for _, alt := range repo.db.alerts {
		if filter.StudentID != "" && alt.StudentID != filter.StudentID {
			continue
		}
		if filter.TeacherID != "" && alt.TeacherID != filter.TeacherID {
			continue
		}
		if filter.Category != "" && alt.Category != filter.Category {
			continue
		}
		alerts = append(alerts, repo.join(*alt))
	}

	sort.Slice(alerts, func(i, j int) bool { return alerts[i].CreatedAt.After(alerts[j].CreatedAt) })
	return alerts, nil
}

func (repo *alertRepository) StudentAlertExists(ctx context.Context, studentID, category string) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, alt := range repo.db.alerts {
		if alt.StudentID == studentID && alt.Category == category {
			return true, nil
		}
	}
	return false, nil
}

func (repo *alertRepository) SetAlertRead(ctx context.Context, id string) (alert.Alert, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	alt, ok := repo.db.alerts[id]
	if !ok {
		return alert.Alert{}, alert.ErrNotFound
	}
	alt.Read = true
	return repo.join(*alt), nil
}

func (repo *alertRepository) DeleteAlertsByID(ctx context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.alerts, id)
	}
	return nil
}
