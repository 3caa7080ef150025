package course

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/user"
)

var (
	// errors
	ErrNotFound   = errors.New("course not found")
	ErrNotTeacher = errors.New("user is not a teacher")
	ErrNoClass    = errors.New("student is not assigned to a class")
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, crs Course) (Course, error)
		GetCourseByID(ctx context.Context, id string) (Course, error)
		// FilterCourses applies AND operation on available QueryFilter fields;
		// an empty filter returns all courses.
		FilterCourses(ctx context.Context, filter QueryFilter) ([]Course, error)
		UpdateCourse(ctx context.Context, crs Course) (Course, error)
		DeleteCoursesByID(ctx context.Context, ids ...string) error
	}

	// UserDirectory resolves users; implemented by the user service.
	UserDirectory interface {
		GetByID(ctx context.Context, id string) (user.User, error)
		Filter(ctx context.Context, filter user.QueryFilter) ([]user.User, error)
	}

	Service interface {
		Create(ctx context.Context, nc NewCourse) (Course, error)
		GetByID(ctx context.Context, id string) (Course, error)
		Filter(ctx context.Context, filter QueryFilter) ([]Course, error)
		// QueryForStudent returns all courses of the student's class.
		QueryForStudent(ctx context.Context, std user.User) ([]Course, error)
		// Students returns the roster of the course, ie. the students of its class.
		// Only the course's assigned teacher or an admin may call this; enforced
		// by the API layer for admins, here for teachers.
		Students(ctx context.Context, courseID string, actor user.User) ([]user.User, error)
		Update(ctx context.Context, id string, uc UpdateCourse) (Course, error)
		Delete(ctx context.Context, ids ...string) error
	}

	service struct {
		repo  Repository
		users UserDirectory
	}
)

// ErrNotCourseTeacher is returned when a teacher acts on a course that is not theirs.
var ErrNotCourseTeacher = errors.New("you are not allowed to access this course")

var _ Service = (*service)(nil)

func NewService(repo Repository, users UserDirectory) Service {
	return &service{repo: repo, users: users}
}

func (svc *service) Create(ctx context.Context, nc NewCourse) (Course, error) {
	teacher, err := svc.users.GetByID(ctx, nc.TeacherID)
	if err != nil {
		return Course{}, err
	}
	if !teacher.IsTeacher() {
		return Course{}, core.NewValidationError(ErrNotTeacher, core.FieldError{Field: "teacher_id", Error: ErrNotTeacher.Error()})
	}
	crs := Course{
		Name:        nc.Name,
		TeacherID:   nc.TeacherID,
		ClassID:     nc.ClassID,
		Description: nc.Description,
		CreatedAt:   time.Now().UTC(),
	}
	return svc.repo.CreateCourse(ctx, crs)
}

func (svc *service) GetByID(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourseByID(ctx, id)
}

func (svc *service) Filter(ctx context.Context, filter QueryFilter) ([]Course, error) {
	return svc.repo.FilterCourses(ctx, filter)
}

func (svc *service) QueryForStudent(ctx context.Context, std user.User) ([]Course, error) {
	if std.ClassID == "" {
		return nil, core.NewValidationError(ErrNoClass)
	}
	return svc.repo.FilterCourses(ctx, QueryFilter{ClassID: std.ClassID})
}

func (svc *service) Students(ctx context.Context, courseID string, actor user.User) ([]user.User, error) {
	crs, err := svc.repo.GetCourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && crs.TeacherID != actor.ID {
		return nil, ErrNotCourseTeacher
	}
	return svc.users.Filter(ctx, user.QueryFilter{ClassID: crs.ClassID, Roles: user.StudentRoles})
}

func (svc *service) Update(ctx context.Context, id string, uc UpdateCourse) (Course, error) {
	crs := Course{
		ID:          id,
		Name:        uc.Name,
		TeacherID:   uc.TeacherID,
		ClassID:     uc.ClassID,
		Description: uc.Description,
	}
	return svc.repo.UpdateCourse(ctx, crs)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteCoursesByID(ctx, ids...)
}
