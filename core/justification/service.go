package justification

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/attendance"
	"github.com/trezcool/kelasi/core/notification"
	"github.com/trezcool/kelasi/core/user"
)

var (
	// errors
	ErrNotFound = errors.New("justification not found")
	ErrNotOwner = errors.New("you can only justify your own absences")
)

type (
	Repository interface {
		CreateJustification(ctx context.Context, jst Justification) (Justification, error)
		GetJustificationByID(ctx context.Context, id string) (Justification, error)
		// FilterJustifications applies AND operation on available QueryFilter
		// fields and returns justifications ordered by creation desc.
		FilterJustifications(ctx context.Context, filter QueryFilter) ([]Justification, error)
		UpdateJustification(ctx context.Context, jst Justification) (Justification, error)
		DeleteJustificationsByID(ctx context.Context, ids ...string) error
	}

	// RecordStore resolves and updates attendance records; implemented by the
	// attendance service.
	RecordStore interface {
		GetByID(ctx context.Context, id string) (attendance.Record, error)
		MarkJustified(ctx context.Context, recordID string) (attendance.Record, error)
	}

	// Notifier delivers in-app notifications; implemented by the notification service.
	Notifier interface {
		Create(ctx context.Context, nn notification.NewNotification) (notification.Notification, error)
	}

	// UserDirectory resolves students for email notifications.
	UserDirectory interface {
		GetByID(ctx context.Context, id string) (user.User, error)
	}

	Service interface {
		// Create opens a pending justification for one of the student's own records.
		Create(ctx context.Context, nj NewJustification, std user.User) (Justification, error)
		GetByID(ctx context.Context, id string) (Justification, error)
		Query(ctx context.Context, filter QueryFilter) ([]Justification, error)
		QueryForStudent(ctx context.Context, studentID string) ([]Justification, error)
		// Decide accepts or refuses the justification. Acceptance marks the
		// underlying record justified; either way the student is notified.
		Decide(ctx context.Context, id string, d Decision) (Justification, error)
		UpdateComment(ctx context.Context, id, comment string) (Justification, error)
		Delete(ctx context.Context, ids ...string) error
	}

	service struct {
		repo     Repository
		records  RecordStore
		notifier Notifier
		users    UserDirectory
		mailSvc  core.EmailService
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, records RecordStore, notifier Notifier, users UserDirectory, mailSvc core.EmailService) Service {
	return &service{repo: repo, records: records, notifier: notifier, users: users, mailSvc: mailSvc}
}

func (svc *service) Create(ctx context.Context, nj NewJustification, std user.User) (Justification, error) {
	rec, err := svc.records.GetByID(ctx, nj.RecordID)
	if err != nil {
		return Justification{}, err
	}
	if rec.StudentID != std.ID {
		return Justification{}, ErrNotOwner
	}
	jst := Justification{
		StudentID: std.ID,
		RecordID:  nj.RecordID,
		Reason:    nj.Reason,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateJustification(ctx, jst)
}

func (svc *service) GetByID(ctx context.Context, id string) (Justification, error) {
	return svc.repo.GetJustificationByID(ctx, id)
}

func (svc *service) Query(ctx context.Context, filter QueryFilter) ([]Justification, error) {
	return svc.repo.FilterJustifications(ctx, filter)
}

func (svc *service) QueryForStudent(ctx context.Context, studentID string) ([]Justification, error) {
	return svc.repo.FilterJustifications(ctx, QueryFilter{StudentID: studentID})
}

func (svc *service) Decide(ctx context.Context, id string, d Decision) (Justification, error) {
	jst, err := svc.repo.GetJustificationByID(ctx, id)
	if err != nil {
		return Justification{}, err
	}
	jst.Status = d.Status
	jst.AdminComment = d.AdminComment
	jst, err = svc.repo.UpdateJustification(ctx, jst)
	if err != nil {
		return Justification{}, err
	}

	msg := "Your justification has been refused."
	if jst.Status == StatusAccepted {
		msg = "Your justification has been accepted."
		if _, err = svc.records.MarkJustified(ctx, jst.RecordID); err != nil {
			return Justification{}, errors.Wrap(err, "marking record justified")
		}
	}
	if jst.AdminComment != "" {
		msg += " " + jst.AdminComment
	}
	if _, err = svc.notifier.Create(ctx, notification.NewNotification{
		StudentID:       jst.StudentID,
		JustificationID: jst.ID,
		Message:         msg,
	}); err != nil {
		return Justification{}, errors.Wrap(err, "notifying student")
	}
	svc.notifyByMail(ctx, jst, msg)
	return jst, nil
}

func (svc *service) UpdateComment(ctx context.Context, id, comment string) (Justification, error) {
	jst, err := svc.repo.GetJustificationByID(ctx, id)
	if err != nil {
		return Justification{}, err
	}
	jst.AdminComment = core.CleanString(comment)
	return svc.repo.UpdateJustification(ctx, jst)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteJustificationsByID(ctx, ids...)
}

func (svc *service) notifyByMail(ctx context.Context, jst Justification, msg string) {
	if !core.Conf.EmailNotifications {
		return
	}
	std, err := svc.users.GetByID(ctx, jst.StudentID)
	if err != nil {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: std.Name, Address: std.Email}},
		Subject: "Justification update",
		BodyStr: msg,
	})
}
