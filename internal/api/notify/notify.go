// Package notify hands marketplace notifications to the message broker
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cuongbtq/bid-service/shared/events"
)

// Publisher is the subset of the RabbitMQ client used for notifications
type Publisher interface {
	PublishWithRetry(ctx context.Context, routingKey string, body []byte, contentType string) error
}

// BrokerNotifier publishes each notification under "<prefix>.<type>"
type BrokerNotifier struct {
	publisher Publisher
	prefix    string
	logger    *slog.Logger
}

func NewBrokerNotifier(publisher Publisher, routingKeyPrefix string, logger *slog.Logger) *BrokerNotifier {
	return &BrokerNotifier{
		publisher: publisher,
		prefix:    routingKeyPrefix,
		logger:    logger,
	}
}

func (n *BrokerNotifier) Notify(ctx context.Context, notification *events.Notification) error {
	body, err := notification.Encode()
	if err != nil {
		return err
	}

	routingKey := RoutingKey(n.prefix, notification.Type)
	if err := n.publisher.PublishWithRetry(ctx, routingKey, body, events.ContentTypeJSON); err != nil {
		return fmt.Errorf("failed to publish %s notification: %w", notification.Type, err)
	}

	n.logger.Debug("Notification published",
		slog.String("event_id", notification.EventID),
		slog.String("routing_key", routingKey),
		slog.String("user_id", notification.UserID),
	)

	return nil
}

// RoutingKey joins prefix and notification type
func RoutingKey(prefix, notificationType string) string {
	if prefix == "" {
		return notificationType
	}
	return prefix + "." + notificationType
}

// LogNotifier only logs notifications. Used when broker delivery is disabled.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, notification *events.Notification) error {
	n.logger.Info("Notification (delivery disabled)",
		slog.String("type", notification.Type),
		slog.String("user_id", notification.UserID),
		slog.String("title", notification.Title),
	)
	return nil
}
