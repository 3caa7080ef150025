package dummydb

import (
	"context"

	"github.com/google/uuid"

	"github.com/trezcool/kelasi/core/course"
)

type courseRepository struct {
	db *DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db}
}

// join fills the display names; callers must hold the lock.
func (repo *courseRepository) join(crs course.Course) course.Course {
	if teacher, ok := repo.db.users[crs.TeacherID]; ok {
		crs.TeacherName = teacher.Name
	}
	if cls, ok := repo.db.classes[crs.ClassID]; ok {
		crs.ClassName = cls.Name
	}
	return crs
}

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	crs.ID = uuid.New().String()
	repo.db.courses[crs.ID] = &crs
	return repo.join(crs), nil
}

func (repo *courseRepository) GetCourseByID(ctx context.Context, id string) (course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if crs, ok := repo.db.courses[id]; ok {
		return repo.join(*crs), nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) FilterCourses(ctx context.Context, filter course.QueryFilter) ([]course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	courses := make([]course.Course, 0, len(repo.db.courses))
	for _, crs := range repo.db.courses {
		if filter.ClassID != "" && crs.ClassID != filter.ClassID {
			continue
		}
		if filter.TeacherID != "" && crs.TeacherID != filter.TeacherID {
			continue
		}
		courses = append(courses, repo.join(*crs))
	}
	return courses, nil
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	origCrs, ok := repo.db.courses[crs.ID]
	if !ok {
		return course.Course{}, course.ErrNotFound
	}
	if crs.Name != "" {
		origCrs.Name = crs.Name
	}
	if crs.TeacherID != "" {
		origCrs.TeacherID = crs.TeacherID
	}
	if crs.ClassID != "" {
		origCrs.ClassID = crs.ClassID
	}
	if crs.Description != "" {
		origCrs.Description = crs.Description
	}
	repo.db.courses[crs.ID] = origCrs
	return repo.join(*origCrs), nil
}

func (repo *courseRepository) DeleteCoursesByID(ctx context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.courses, id)
	}
	return nil
}
