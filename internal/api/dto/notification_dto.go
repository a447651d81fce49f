package dto

import (
	"time"

	"github.com/cuongbtq/bid-service/internal/api/model"
)

type ListNotificationsRequest struct {
	UnreadOnly bool `form:"unread_only"`
	Limit      int  `form:"limit"`
}

type MarkReadRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

type NotificationDTO struct {
	NotificationID string `json:"notification_id"`
	Type           string `json:"type"`
	Title          string `json:"title"`
	Body           string `json:"body"`
	JobID          string `json:"job_id,omitempty"`
	BidID          string `json:"bid_id,omitempty"`
	Read           bool   `json:"read"`
	CreatedAt      string `json:"created_at"`
}

type ListNotificationsResponse struct {
	Notifications []NotificationDTO `json:"notifications"`
}

func NewNotificationDTO(n *model.Notification) NotificationDTO {
	return NotificationDTO{
		NotificationID: n.NotificationID,
		Type:           n.Type,
		Title:          n.Title,
		Body:           n.Body,
		JobID:          n.JobID.String,
		BidID:          n.BidID.String,
		Read:           n.ReadAt.Valid,
		CreatedAt:      n.CreatedAt.Format(time.RFC3339),
	}
}
