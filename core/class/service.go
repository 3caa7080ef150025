package class

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/user"
)

var (
	// errors
	ErrNotFound   = errors.New("class not found")
	ErrNameExists = errors.New("a class with this name already exists")
	ErrNotStudent = errors.New("user is not a student")
)

type (
	Repository interface {
		CheckClassNameUniqueness(ctx context.Context, name string, excludedClasses ...Class) error
		CreateClass(ctx context.Context, cls Class) (Class, error)
		GetClassByID(ctx context.Context, id string) (Class, error)
		QueryAllClasses(ctx context.Context) ([]Class, error)
		CountClasses(ctx context.Context) (int, error)
		UpdateClass(ctx context.Context, cls Class) (Class, error)
		DeleteClassesByID(ctx context.Context, ids ...string) error
	}

	// StudentDirectory resolves and assigns students; implemented by the user service.
	StudentDirectory interface {
		GetByID(ctx context.Context, id string) (user.User, error)
		Filter(ctx context.Context, filter user.QueryFilter) ([]user.User, error)
		Update(ctx context.Context, id string, uu user.UpdateUser) (user.User, error)
	}

	Service interface {
		CheckUniqueness(ctx context.Context, name string, exclClasses ...Class) error
		Create(ctx context.Context, nc NewClass) (Class, error)
		GetByID(ctx context.Context, id string) (Class, error)
		QueryAll(ctx context.Context) ([]Class, error)
		// Students returns the class roster, ie. all students assigned to the class.
		Students(ctx context.Context, classID string) ([]user.User, error)
		// AssignStudent moves a student into the class.
		AssignStudent(ctx context.Context, classID, studentID string) error
		Update(ctx context.Context, id string, uc UpdateClass) (Class, error)
		Delete(ctx context.Context, ids ...string) error
	}

	service struct {
		repo     Repository
		students StudentDirectory
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, students StudentDirectory) Service {
	return &service{repo: repo, students: students}
}

func (svc *service) CheckUniqueness(ctx context.Context, name string, exclClasses ...Class) error {
	if err := svc.repo.CheckClassNameUniqueness(ctx, name, exclClasses...); err != nil {
		if errors.Cause(err) == ErrNameExists {
			return core.NewValidationError(err, core.FieldError{Field: "name", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) Create(ctx context.Context, nc NewClass) (Class, error) {
	cls := Class{
		Name:        nc.Name,
		Description: nc.Description,
		CreatedAt:   time.Now().UTC(),
	}
	return svc.repo.CreateClass(ctx, cls)
}

func (svc *service) GetByID(ctx context.Context, id string) (Class, error) {
	return svc.repo.GetClassByID(ctx, id)
}

func (svc *service) QueryAll(ctx context.Context) ([]Class, error) {
	return svc.repo.QueryAllClasses(ctx)
}

func (svc *service) Students(ctx context.Context, classID string) ([]user.User, error) {
	if _, err := svc.repo.GetClassByID(ctx, classID); err != nil {
		return nil, err
	}
	return svc.students.Filter(ctx, user.QueryFilter{ClassID: classID, Roles: user.StudentRoles})
}

func (svc *service) AssignStudent(ctx context.Context, classID, studentID string) error {
	if _, err := svc.repo.GetClassByID(ctx, classID); err != nil {
		return err
	}
	std, err := svc.students.GetByID(ctx, studentID)
	if err != nil {
		return err
	}
	if !std.IsStudent() {
		return core.NewValidationError(ErrNotStudent, core.FieldError{Field: "student_id", Error: ErrNotStudent.Error()})
	}
	_, err = svc.students.Update(ctx, std.ID, user.UpdateUser{ClassID: classID, Roles: std.Roles})
	return errors.Wrap(err, "assigning student to class")
}

func (svc *service) Update(ctx context.Context, id string, uc UpdateClass) (Class, error) {
	cls := Class{
		ID:          id,
		Name:        uc.Name,
		Description: uc.Description,
	}
	return svc.repo.UpdateClass(ctx, cls)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteClassesByID(ctx, ids...)
}
