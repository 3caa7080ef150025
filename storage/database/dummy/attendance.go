package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/kelasi/core/attendance"
)

type attendanceRepository struct {
	db *DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

// join fills the display names; callers must hold the lock.
func (repo *attendanceRepository) join(rec attendance.Record) attendance.Record {
	if std, ok := repo.db.users[rec.StudentID]; ok {
		rec.StudentName = std.Name
	}
	if crs, ok := repo.db.courses[rec.CourseID]; ok {
		rec.CourseName = crs.Name
	}
	return rec
}

// CreateRecord inserts unconditionally; unlike UpsertRecord it can leave
// several rows behind for the same (student, course, day) key.
func (repo *attendanceRepository) CreateRecord(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	rec.ID = uuid.New().String()
	repo.db.records[rec.ID] = &rec
	return repo.join(rec), nil
}

func (repo *attendanceRepository) GetRecordByID(ctx context.Context, id string) (attendance.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if rec, ok := repo.db.records[id]; ok {
		return repo.join(*rec), nil
	}
	return attendance.Record{}, attendance.ErrNotFound
}

func (repo *attendanceRepository) UpsertRecord(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, orig := range repo.db.records {
		if orig.StudentID == rec.StudentID && orig.CourseID == rec.CourseID && orig.Day == rec.Day {
			orig.Status = rec.Status
			orig.Date = rec.Date
			return repo.join(*orig), nil
		}
	}
	rec.ID = uuid.New().String()
	repo.db.records[rec.ID] = &rec
	return repo.join(rec), nil
}

func (repo *attendanceRepository) UpdateRecordStatus(ctx context.Context, id, status string) (attendance.Record, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	rec, ok := repo.db.records[id]
	if !ok {
		return attendance.Record{}, attendance.ErrNotFound
	}
	rec.Status = status
	return repo.join(*rec), nil
}

func (repo *attendanceRepository) SetRecordJustified(ctx context.Context, id string) (attendance.Record, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	rec, ok := repo.db.records[id]
	if !ok {
		return attendance.Record{}, attendance.ErrNotFound
	}
	rec.Justified = true
	return repo.join(*rec), nil
}

func (repo *attendanceRepository) FilterRecords(ctx context.Context, filter attendance.QueryFilter) ([]attendance.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	courseIDs := make(map[string]bool, len(filter.CourseIDs))
	for _, id := range filter.CourseIDs {
		courseIDs[id] = true
	}

	records := make([]attendance.Record, 0, len(repo.db.records))
	for _, rec := range repo.db.records {
		if filter.CourseID != "" && rec.CourseID != filter.CourseID {
			continue
		}
		if filter.StudentID != "" && rec.StudentID != filter.StudentID {
			continue
		}
		if len(courseIDs) > 0 && !courseIDs[rec.CourseID] {
			continue
		}
		if !filter.From.IsZero() && rec.Date.Before(filter.From.UTC()) {
			continue
		}
		if !filter.To.IsZero() && rec.Date.After(filter.To.UTC()) {
			continue
		}
		records = append(records, repo.join(*rec))
	}

	sort.Slice(records, func(i, j int) bool {
		if !records[i].Date.Equal(records[j].Date) {
			return records[i].Date.After(records[j].Date)
		}
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}

func (repo *attendanceRepository) HasLockedRecords(ctx context.Context, courseID, day string) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, rec := range repo.db.records {
		if rec.CourseID == courseID && rec.Day == day && rec.Locked {
			return true, nil
		}
	}
	return false, nil
}

func (repo *attendanceRepository) LockRecords(ctx context.Context, courseID, day string) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var count int
	for _, rec := range repo.db.records {
		if rec.CourseID == courseID && rec.Day == day && !rec.Locked {
			rec.Locked = true
			count++
		}
	}
	return count, nil
}

func (repo *attendanceRepository) CountUnjustifiedAbsences(ctx context.Context, studentID string) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var count int
	for _, rec := range repo.db.records {
		if rec.StudentID == studentID && rec.Status == attendance.StatusAbsent && !rec.Justified {
			count++
		}
	}
	return count, nil
}

func (repo *attendanceRepository) DeleteRecordsByID(ctx context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.records, id)
	}
	return nil
}
