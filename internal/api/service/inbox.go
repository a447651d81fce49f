package service

import (
	"context"

	"github.com/cuongbtq/bid-service/internal/api/domain"
	"github.com/cuongbtq/bid-service/internal/api/model"
)

const (
	DefaultInboxLimit = 50
	MaxInboxLimit     = 200
)

// InboxRepository reads the notification inbox filled by the worker service
type InboxRepository interface {
	ListNotifications(ctx context.Context, userID string, unreadOnly bool, limit int) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, notificationID, userID string) (*model.Notification, error)
}

// Inbox serves a user's in-app notifications
type Inbox struct {
	repo InboxRepository
}

func NewInbox(repo InboxRepository) *Inbox {
	return &Inbox{repo: repo}
}

// List returns the newest notifications of userID, clamping limit to [1, MaxInboxLimit]
func (i *Inbox) List(ctx context.Context, userID string, unreadOnly bool, limit int) ([]model.Notification, error) {
	if userID == "" {
		return nil, domain.NewValidationError("User ID is required")
	}
	if limit <= 0 {
		limit = DefaultInboxLimit
	}
	if limit > MaxInboxLimit {
		limit = MaxInboxLimit
	}
	return i.repo.ListNotifications(ctx, userID, unreadOnly, limit)
}

// MarkRead marks one of userID's notifications as read
func (i *Inbox) MarkRead(ctx context.Context, notificationID, userID string) (*model.Notification, error) {
	if userID == "" {
		return nil, domain.NewValidationError("User ID is required")
	}
	return i.repo.MarkNotificationRead(ctx, notificationID, userID)
}
