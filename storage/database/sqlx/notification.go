package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/sarvashiksha/backend/core/notification"
)

const notificationColumns = `id, user_id, title, message, link, is_read, created_at`

type notificationRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Title     string    `db:"title"`
	Message   string    `db:"message"`
	Link      string    `db:"link"`
	IsRead    bool      `db:"is_read"`
	CreatedAt time.Time `db:"created_at"`
}

type notificationRepository struct {
	db *sqlx.DB
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *sqlx.DB) *notificationRepository {
	return &notificationRepository{db: db}
}

func notificationWhere(filter notification.Filter) where {
	var w where
	w.add("user_id = ?", filter.UserID)
	if filter.UnreadOnly {
		w.add("NOT is_read")
	}
	return w
}

func (repo notificationRepository) CreateNotification(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	n.ID = uuid.New().String()
	row := notificationRow(n)
	row.CreatedAt = n.CreatedAt.UTC()
	q := `INSERT INTO notification (` + notificationColumns + `)
		VALUES (:id, :user_id, :title, :message, :link, :is_read, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		return notification.Notification{}, errors.Wrap(err, "inserting notification")
	}
	return n, nil
}

func (repo notificationRepository) QueryNotifications(ctx context.Context, filter notification.Filter) ([]notification.Notification, error) {
	if !isUUID(filter.UserID) {
		return []notification.Notification{}, nil
	}
	w := notificationWhere(filter)
	var rows []notificationRow
	q := `SELECT ` + notificationColumns + ` FROM notification` + w.String() + ` ORDER BY created_at DESC, id`
	if err := repo.db.SelectContext(ctx, &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "querying notifications")
	}
	notifs := make([]notification.Notification, 0, len(rows))
	for _, r := range rows {
		r.CreatedAt = r.CreatedAt.UTC()
		notifs = append(notifs, notification.Notification(r))
	}
	return notifs, nil
}

func (repo notificationRepository) CountNotifications(ctx context.Context, filter notification.Filter) (int, error) {
	if !isUUID(filter.UserID) {
		return 0, nil
	}
	w := notificationWhere(filter)
	var count int
	if err := repo.db.GetContext(ctx, &count, `SELECT count(*) FROM notification`+w.String(), w.args...); err != nil {
		return 0, errors.Wrap(err, "counting notifications")
	}
	return count, nil
}

func (repo notificationRepository) MarkRead(ctx context.Context, userID string, ids ...string) error {
	if !isUUID(userID) || !isUUID(ids...) {
		return notification.ErrNotFound
	}
	q := `UPDATE notification SET is_read = TRUE WHERE user_id = $1 AND id::text = ANY($2)`
	res, err := repo.db.ExecContext(ctx, q, userID, pq.Array(ids))
	if err != nil {
		return errors.Wrap(err, "marking notifications read")
	}
	if n, err := res.RowsAffected(); err != nil {
		return errors.Wrap(err, "marking notifications read")
	} else if int(n) != len(ids) {
		return notification.ErrNotFound
	}
	return nil
}

func (repo notificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	if !isUUID(userID) {
		return nil
	}
	if _, err := repo.db.ExecContext(ctx, `UPDATE notification SET is_read = TRUE WHERE user_id = $1 AND NOT is_read`, userID); err != nil {
		return errors.Wrap(err, "marking all notifications read")
	}
	return nil
}

func (repo notificationRepository) DeleteNotification(ctx context.Context, userID, id string) error {
	if !isUUID(userID, id) {
		return notification.ErrNotFound
	}
	res, err := repo.db.ExecContext(ctx, `DELETE FROM notification WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return errors.Wrap(err, "deleting notification")
	}
	if n, err := res.RowsAffected(); err != nil {
		return errors.Wrap(err, "deleting notification")
	} else if n == 0 {
		return notification.ErrNotFound
	}
	return nil
}
