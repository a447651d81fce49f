package storage

import (
	"context"
	"fmt"

	"github.com/cuongbtq/bid-service/internal/api/domain"
	"github.com/cuongbtq/bid-service/internal/api/model"
)

// ListNotifications returns the newest notifications of a user
func (s *Storage) ListNotifications(ctx context.Context, userID string, unreadOnly bool, limit int) ([]model.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = $1`
	if unreadOnly {
		query += " AND read_at IS NULL"
	}
	query += " ORDER BY created_at DESC, notification_id DESC LIMIT $2"

	notifications := []model.Notification{}
	if err := s.db.SelectContext(ctx, &notifications, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	return notifications, nil
}

// MarkNotificationRead sets read_at on a notification owned by userID. Marking
// an already read notification keeps the original timestamp.
func (s *Storage) MarkNotificationRead(ctx context.Context, notificationID, userID string) (*model.Notification, error) {
	query := `
		UPDATE notifications
		SET read_at = COALESCE(read_at, NOW())
		WHERE notification_id = $1
		  AND user_id = $2
		RETURNING ` + notificationColumns

	var n model.Notification
	if err := s.db.GetContext(ctx, &n, query, notificationID, userID); err != nil {
		return nil, noRows(err, domain.ErrNotificationNotFound, "mark notification read")
	}

	return &n, nil
}
