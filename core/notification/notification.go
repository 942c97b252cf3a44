package notification

import (
	"context"
	"time"

	"github.com/sarvashiksha/backend/core"
)

var ErrNotFound = core.NewNotFoundError("notification not found")

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Link      string    `json:"link"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"` // UTC
}

type Filter struct {
	UserID     string
	UnreadOnly bool
}

type Repository interface {
	CreateNotification(ctx context.Context, n Notification) (Notification, error)
	// QueryNotifications returns the newest notifications first.
	QueryNotifications(ctx context.Context, filter Filter) ([]Notification, error)
	CountNotifications(ctx context.Context, filter Filter) (int, error)
	// MarkRead & DeleteNotification only touch notifications of userID; others are ErrNotFound.
	MarkRead(ctx context.Context, userID string, ids ...string) error
	MarkAllRead(ctx context.Context, userID string) error
	DeleteNotification(ctx context.Context, userID, id string) error
}

// Service is the per-user inbox other components write to.
type Service struct {
	repo    Repository
	nowFunc func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, nowFunc: time.Now}
}

func (svc *Service) Notify(ctx context.Context, userID, title, message, link string) error {
	_, err := svc.repo.CreateNotification(ctx, Notification{
		UserID:    userID,
		Title:     title,
		Message:   message,
		Link:      link,
		CreatedAt: svc.nowFunc().UTC(),
	})
	return err
}

func (svc *Service) List(ctx context.Context, userID string, unreadOnly bool) ([]Notification, error) {
	return svc.repo.QueryNotifications(ctx, Filter{UserID: userID, UnreadOnly: unreadOnly})
}

func (svc *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	return svc.repo.CountNotifications(ctx, Filter{UserID: userID, UnreadOnly: true})
}

func (svc *Service) MarkRead(ctx context.Context, userID, id string) error {
	return svc.repo.MarkRead(ctx, userID, id)
}

func (svc *Service) MarkAllRead(ctx context.Context, userID string) error {
	return svc.repo.MarkAllRead(ctx, userID)
}

func (svc *Service) Delete(ctx context.Context, userID, id string) error {
	return svc.repo.DeleteNotification(ctx, userID, id)
}
