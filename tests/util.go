package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/trezcool/kelasi/core/attendance"
	"github.com/trezcool/kelasi/core/class"
	"github.com/trezcool/kelasi/core/course"
	"github.com/trezcool/kelasi/core/justification"
	"github.com/trezcool/kelasi/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateStudent(t *testing.T, repo user.Repository, name, uname, classID string) user.User {
	t.Helper()

	usr := CreateUser(t, repo, name, uname, uname+"@test.cd", "", user.StudentRoles, true)
	if classID != "" {
		usr.ClassID = classID
		refreshed, err := repo.UpdateUser(context.Background(), usr, nil)
		if err != nil {
			t.Fatalf("CreateStudent() failed: %v", err)
		}
		usr = refreshed
	}
	return usr
}

func CreateClass(t *testing.T, repo class.Repository, name string) class.Class {
	t.Helper()

	cls, err := repo.CreateClass(context.Background(), class.Class{
		Name:      name,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateClass() failed: %v", err)
	}
	return cls
}

func CreateCourse(t *testing.T, repo course.Repository, name, teacherID, classID string) course.Course {
	t.Helper()

	crs, err := repo.CreateCourse(context.Background(), course.Course{
		Name:      name,
		TeacherID: teacherID,
		ClassID:   classID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return crs
}

func CreateRecord(
	t *testing.T,
	repo attendance.Repository,
	studentID, courseID, status string,
	date time.Time,
) attendance.Record {
	t.Helper()

	rec, err := repo.CreateRecord(context.Background(), attendance.Record{
		StudentID: studentID,
		CourseID:  courseID,
		Date:      date.UTC(),
		Day:       attendance.DayOf(date),
		Status:    status,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateRecord() failed: %v", err)
	}
	return rec
}

func CreateJustification(
	t *testing.T,
	repo justification.Repository,
	studentID, recordID, reason string,
) justification.Justification {
	t.Helper()

	jst, err := repo.CreateJustification(context.Background(), justification.Justification{
		StudentID: studentID,
		RecordID:  recordID,
		Reason:    reason,
		Status:    justification.StatusPending,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateJustification() failed: %v", err)
	}
	return jst
}
