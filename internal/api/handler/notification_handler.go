package handler

import (
	"net/http"

	"github.com/cuongbtq/bid-service/internal/api/dto"
	"github.com/gin-gonic/gin"
)

// ListNotifications handles GET /api/v1/users/:user_id/notifications
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	var req dto.ListNotificationsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, "Invalid query parameters")
		return
	}

	items, err := h.inbox.List(c.Request.Context(), c.Param("user_id"), req.UnreadOnly, req.Limit)
	if err != nil {
		respondError(c, h.logger, "list_notifications", err)
		return
	}

	resp := dto.ListNotificationsResponse{Notifications: make([]dto.NotificationDTO, len(items))}
	for i := range items {
		resp.Notifications[i] = dto.NewNotificationDTO(&items[i])
	}

	c.JSON(http.StatusOK, resp)
}

// MarkRead handles POST /api/v1/notifications/:notification_id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	notificationID, ok := uuidParam(c, "notification_id")
	if !ok {
		return
	}

	var req dto.MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "user_id is required")
		return
	}

	n, err := h.inbox.MarkRead(c.Request.Context(), notificationID, req.UserID)
	if err != nil {
		respondError(c, h.logger, "mark_notification_read", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewNotificationDTO(n))
}
