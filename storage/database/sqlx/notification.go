package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kelasi/core/notification"
)

type notificationRepository struct {
	db *sqlx.DB
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *sqlx.DB) notification.Repository {
	return &notificationRepository{db: db}
}

type notificationRow struct {
	ID              string      `db:"id"`
	StudentID       string      `db:"student_id"`
	JustificationID null.String `db:"justification_id"`
	Message         string      `db:"message"`
	Read            bool        `db:"read"`
	CreatedAt       time.Time   `db:"created_at"`
}

func (row notificationRow) toNotification() notification.Notification {
	return notification.Notification{
		ID:              row.ID,
		StudentID:       row.StudentID,
		JustificationID: row.JustificationID.String,
		Message:         row.Message,
		Read:            row.Read,
		CreatedAt:       row.CreatedAt,
	}
}

const notificationColumns = `id, student_id, justification_id, message, read, created_at`

func (repo *notificationRepository) CreateNotification(ctx context.Context, ntf notification.Notification) (notification.Notification, error) {
	ntf.ID = uuid.New().String()
	q := `INSERT INTO notification (` + notificationColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := repo.db.ExecContext(ctx, q,
		ntf.ID, ntf.StudentID,
		null.NewString(ntf.JustificationID, ntf.JustificationID != ""),
		ntf.Message, ntf.Read, ntf.CreatedAt)
	if err != nil {
		return notification.Notification{}, errors.Wrap(err, "creating notification")
	}
	return ntf, nil
}

func (repo *notificationRepository) GetNotificationByID(ctx context.Context, id string) (notification.Notification, error) {
	var row notificationRow
	q := `SELECT ` + notificationColumns + ` FROM notification WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		if isNoRows(err) {
			return notification.Notification{}, notification.ErrNotFound
		}
		return notification.Notification{}, errors.Wrap(err, "getting notification")
	}
	return row.toNotification(), nil
}

func (repo *notificationRepository) QueryNotificationsForStudent(ctx context.Context, studentID string) ([]notification.Notification, error) {
	var rows []notificationRow
	q := `SELECT ` + notificationColumns + ` FROM notification WHERE student_id = $1 ORDER BY created_at DESC`
	if err := repo.db.SelectContext(ctx, &rows, q, studentID); err != nil {
		return nil, errors.Wrap(err, "querying notifications")
	}
	notifications := make([]notification.Notification, len(rows))
	for i, row := range rows {
		notifications[i] = row.toNotification()
	}
	return notifications, nil
}

func (repo *notificationRepository) SetNotificationRead(ctx context.Context, id string) (notification.Notification, error) {
	res, err := repo.db.ExecContext(ctx, `UPDATE notification SET read = true WHERE id = $1`, id)
	if err != nil {
		return notification.Notification{}, errors.Wrap(err, "marking notification read")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notification.Notification{}, notification.ErrNotFound
	}
	return repo.GetNotificationByID(ctx, id)
}

func (repo *notificationRepository) DeleteNotificationsByID(ctx context.Context, ids ...string) error {
	q, args, err := sqlx.In(`DELETE FROM notification WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting notifications")
	}
	return nil
}
