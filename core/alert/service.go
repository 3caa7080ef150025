package alert

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/user"
)

var (
	// errors
	ErrNotFound      = errors.New("alert not found")
	ErrAlertExists   = errors.New("alert already exists")
	ErrNotRecipient  = errors.New("you are not the recipient of this alert")
	ErrInvalidTarget = errors.New("indicate either a student or a teacher, not both")
)

type (
	Repository interface {
		// CreateAlert persists the alert. Stores backing absence-threshold alerts
		// with a uniqueness guarantee per (student, category) return ErrAlertExists
		// on a duplicate.
		CreateAlert(ctx context.Context, alt Alert) (Alert, error)
		GetAlertByID(ctx context.Context, id string) (Alert, error)
		// FilterAlerts applies AND operation on available QueryFilter fields and
		// returns alerts ordered by creation desc.
		FilterAlerts(ctx context.Context, filter QueryFilter) ([]Alert, error)
		StudentAlertExists(ctx context.Context, studentID, category string) (bool, error)
		SetAlertRead(ctx context.Context, id string) (Alert, error)
		DeleteAlertsByID(ctx context.Context, ids ...string) error
	}

	// AbsenceCounter counts a student's unjustified absences; implemented by the
	// attendance repository.
	AbsenceCounter interface {
		CountUnjustifiedAbsences(ctx context.Context, studentID string) (int, error)
	}

	// UserDirectory resolves alert recipients for email notifications.
	UserDirectory interface {
		GetByID(ctx context.Context, id string) (user.User, error)
	}

	Service interface {
		// EvaluateAbsenceThreshold raises an absence-threshold alert for the
		// student once their unjustified absence count reaches the configured
		// threshold. At most one such alert ever exists per student.
		EvaluateAbsenceThreshold(ctx context.Context, studentID, courseID string) error
		Create(ctx context.Context, na NewAlert) (Alert, error)
		CreateSummons(ctx context.Context, ns NewSummons) (Alert, error)
		GetByID(ctx context.Context, id string) (Alert, error)
		Query(ctx context.Context, filter QueryFilter) ([]Alert, error)
		QueryForStudent(ctx context.Context, studentID string) ([]Alert, error)
		QueryForTeacher(ctx context.Context, teacherID string) ([]Alert, error)
		// MarkRead flags the alert as read. Only its recipient or an admin may do so.
		MarkRead(ctx context.Context, id string, actor user.User) (Alert, error)
		Delete(ctx context.Context, ids ...string) error
	}

	service struct {
		repo     Repository
		absences AbsenceCounter
		users    UserDirectory
		mailSvc  core.EmailService
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, absences AbsenceCounter, users UserDirectory, mailSvc core.EmailService) Service {
	return &service{repo: repo, absences: absences, users: users, mailSvc: mailSvc}
}

func (svc *service) EvaluateAbsenceThreshold(ctx context.Context, studentID, courseID string) error {
	count, err := svc.absences.CountUnjustifiedAbsences(ctx, studentID)
	if err != nil {
		return errors.Wrap(err, "counting unjustified absences")
	}
	threshold := core.Conf.AbsenceAlertThreshold
	if count < threshold {
		return nil
	}
	exists, err := svc.repo.StudentAlertExists(ctx, studentID, CategoryAbsenceThreshold)
	if err != nil {
		return errors.Wrap(err, "checking existing alert")
	}
	if exists {
		return nil
	}
	alt := Alert{
		CourseID:  courseID,
		StudentID: studentID,
		Category:  CategoryAbsenceThreshold,
		Threshold: threshold,
		Message:   fmt.Sprintf("You have %d unjustified absences.", threshold),
		CreatedAt: time.Now().UTC(),
	}
	alt, err = svc.repo.CreateAlert(ctx, alt)
	if err != nil {
		if errors.Cause(err) == ErrAlertExists { // lost a race; alert is there
			return nil
		}
		return errors.Wrap(err, "creating alert")
	}
	svc.notify(ctx, alt)
	return nil
}

func (svc *service) Create(ctx context.Context, na NewAlert) (Alert, error) {
	alt := Alert{
		CourseID:  na.CourseID,
		StudentID: na.StudentID,
		TeacherID: na.TeacherID,
		Category:  CategoryCustom,
		Message:   na.Message,
		CreatedAt: time.Now().UTC(),
	}
	alt, err := svc.repo.CreateAlert(ctx, alt)
	if err != nil {
		return Alert{}, err
	}
	svc.notify(ctx, alt)
	return alt, nil
}

func (svc *service) CreateSummons(ctx context.Context, ns NewSummons) (Alert, error) {
	alt := Alert{
		CourseID:  ns.CourseID,
		TeacherID: ns.TeacherID,
		Category:  CategorySummons,
		Message:   ns.Message,
		CreatedAt: time.Now().UTC(),
	}
	alt, err := svc.repo.CreateAlert(ctx, alt)
	if err != nil {
		return Alert{}, err
	}
	svc.notify(ctx, alt)
	return alt, nil
}

func (svc *service) GetByID(ctx context.Context, id string) (Alert, error) {
	return svc.repo.GetAlertByID(ctx, id)
}

func (svc *service) Query(ctx context.Context, filter QueryFilter) ([]Alert, error) {
	return svc.repo.FilterAlerts(ctx, filter)
}

func (svc *service) QueryForStudent(ctx context.Context, studentID string) ([]Alert, error) {
	return svc.repo.FilterAlerts(ctx, QueryFilter{StudentID: studentID})
}

func (svc *service) QueryForTeacher(ctx context.Context, teacherID string) ([]Alert, error) {
	return svc.repo.FilterAlerts(ctx, QueryFilter{TeacherID: teacherID})
}

func (svc *service) MarkRead(ctx context.Context, id string, actor user.User) (Alert, error) {
	alt, err := svc.repo.GetAlertByID(ctx, id)
	if err != nil {
		return Alert{}, err
	}
	if !actor.IsAdmin() && alt.StudentID != actor.ID && alt.TeacherID != actor.ID {
		return Alert{}, ErrNotRecipient
	}
	return svc.repo.SetAlertRead(ctx, id)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteAlertsByID(ctx, ids...)
}

func (svc *service) notify(ctx context.Context, alt Alert) {
	if !core.Conf.EmailNotifications {
		return
	}
	recipientID := alt.StudentID
	if recipientID == "" {
		recipientID = alt.TeacherID
	}
	usr, err := svc.users.GetByID(ctx, recipientID)
	if err != nil {
		return
	}
	msg := &core.EmailMessage{
		To:      []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject: "New alert",
		BodyStr: alt.Message,
	}
	svc.mailSvc.SendMessages(msg)
}
