package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ContentTypeJSON is the AMQP content type for encoded events
const ContentTypeJSON = "application/json"

// Notification is the message exchanged between the API and the worker
// over RabbitMQ. EventID is unique per message and makes redelivery idempotent.
type Notification struct {
	EventID    string    `json:"event_id"`
	Type       string    `json:"type"`
	UserID     string    `json:"user_id"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	JobID      string    `json:"job_id,omitempty"`
	BidID      string    `json:"bid_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewNotification builds a notification with a fresh event id
func NewNotification(notificationType, userID, title, body string) *Notification {
	return &Notification{
		EventID:    uuid.New().String(),
		Type:       notificationType,
		UserID:     userID,
		Title:      title,
		Body:       body,
		OccurredAt: time.Now().UTC(),
	}
}

// Encode serializes the notification to JSON
func (n *Notification) Encode() ([]byte, error) {
	body, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("failed to encode notification: %w", err)
	}
	return body, nil
}

// Decode parses and validates a notification message body
func Decode(body []byte) (*Notification, error) {
	var n Notification
	if err := json.Unmarshal(body, &n); err != nil {
		return nil, fmt.Errorf("failed to decode notification: %w", err)
	}

	if _, err := uuid.Parse(n.EventID); err != nil {
		return nil, fmt.Errorf("invalid event_id %q: %w", n.EventID, err)
	}

	if n.UserID == "" {
		return nil, fmt.Errorf("user_id is required")
	}

	if n.Type == "" {
		return nil, fmt.Errorf("type is required")
	}

	return &n, nil
}
