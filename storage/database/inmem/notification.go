package inmemdb

import (
	"context"
	"sort"

	"github.com/sarvashiksha/backend/core/notification"
)

type notificationRepository struct {
	db *DB
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *DB) *notificationRepository {
	return &notificationRepository{db: db}
}

func (repo *notificationRepository) query(filter notification.Filter) []notification.Notification {
	notifs := make([]notification.Notification, 0)
	for _, n := range repo.db.notifications {
		if n.UserID != filter.UserID || (filter.UnreadOnly && n.IsRead) {
			continue
		}
		notifs = append(notifs, *n)
	}
	return notifs
}

func (repo *notificationRepository) CreateNotification(_ context.Context, n notification.Notification) (notification.Notification, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	n.ID = repo.db.newID()
	stored := n
	repo.db.notifications[n.ID] = &stored
	return n, nil
}

func (repo *notificationRepository) QueryNotifications(_ context.Context, filter notification.Filter) ([]notification.Notification, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	notifs := repo.query(filter)
	sort.Slice(notifs, func(i, j int) bool { return repo.db.before(notifs[j].ID, notifs[i].ID) })
	return notifs, nil
}

func (repo *notificationRepository) CountNotifications(_ context.Context, filter notification.Filter) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return len(repo.query(filter)), nil
}

func (repo *notificationRepository) MarkRead(_ context.Context, userID string, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		if n, ok := repo.db.notifications[id]; !ok || n.UserID != userID {
			return notification.ErrNotFound
		}
	}
	for _, id := range ids {
		repo.db.notifications[id].IsRead = true
	}
	return nil
}

func (repo *notificationRepository) MarkAllRead(_ context.Context, userID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, n := range repo.db.notifications {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

func (repo *notificationRepository) DeleteNotification(_ context.Context, userID, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if n, ok := repo.db.notifications[id]; !ok || n.UserID != userID {
		return notification.ErrNotFound
	}
	delete(repo.db.notifications, id)
	return nil
}
