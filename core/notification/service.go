package notification

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core/user"
)

var (
	// errors
	ErrNotFound     = errors.New("notification not found")
	ErrNotRecipient = errors.New("you are not the recipient of this notification")
)

type (
	Repository interface {
		CreateNotification(ctx context.Context, ntf Notification) (Notification, error)
		GetNotificationByID(ctx context.Context, id string) (Notification, error)
		// QueryNotificationsForStudent returns the student's notifications
		// ordered by creation desc.
		QueryNotificationsForStudent(ctx context.Context, studentID string) ([]Notification, error)
		SetNotificationRead(ctx context.Context, id string) (Notification, error)
		DeleteNotificationsByID(ctx context.Context, ids ...string) error
	}

	Service interface {
		Create(ctx context.Context, nn NewNotification) (Notification, error)
		QueryForStudent(ctx context.Context, studentID string) ([]Notification, error)
		// MarkRead flags the notification as read. Only its recipient or an
		// admin may do so.
		MarkRead(ctx context.Context, id string, actor user.User) (Notification, error)
		Delete(ctx context.Context, ids ...string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, nn NewNotification) (Notification, error) {
	ntf := Notification{
		StudentID:       nn.StudentID,
		JustificationID: nn.JustificationID,
		Message:         nn.Message,
		CreatedAt:       time.Now().UTC(),
	}
	return svc.repo.CreateNotification(ctx, ntf)
}

func (svc *service) QueryForStudent(ctx context.Context, studentID string) ([]Notification, error) {
	return svc.repo.QueryNotificationsForStudent(ctx, studentID)
}

func (svc *service) MarkRead(ctx context.Context, id string, actor user.User) (Notification, error) {
	ntf, err := svc.repo.GetNotificationByID(ctx, id)
	if err != nil {
		return Notification{}, err
	}
	if !actor.IsAdmin() && ntf.StudentID != actor.ID {
		return Notification{}, ErrNotRecipient
	}
	return svc.repo.SetNotificationRead(ctx, id)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteNotificationsByID(ctx, ids...)
}
