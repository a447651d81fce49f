package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cuongbtq/bid-service/internal/worker/domain"
	"github.com/cuongbtq/bid-service/shared/events"
	amqp "github.com/rabbitmq/amqp091-go"
)

// setupConsumer starts consuming with the configured prefetch
func (w *Worker) setupConsumer() (<-chan amqp.Delivery, error) {
	deliveries, err := w.consumer.Consume(w.workerID, w.prefetchCount)
	if err != nil {
		return nil, fmt.Errorf("failed to start consuming: %w", err)
	}

	w.logger.Info("RabbitMQ consumer started",
		slog.String("consumer_tag", w.workerID),
		slog.String("queue", w.queueName),
		slog.Int("prefetch_count", w.prefetchCount),
	)

	return deliveries, nil
}

// startMessageDispatcher decodes deliveries and hands them to the worker pool.
// Undecodable messages are dead-lettered immediately.
func (w *Worker) startMessageDispatcher(ctx context.Context, deliveries <-chan amqp.Delivery) {
	w.logger.Info("Message dispatcher started",
		slog.String("worker_id", w.workerID),
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Message dispatcher stopped - context canceled")
			return

		case delivery, ok := <-deliveries:
			if !ok {
				w.logger.Warn("RabbitMQ delivery channel closed")
				return
			}

			notification, err := events.Decode(delivery.Body)
			if err != nil {
				w.logger.Error("Dropping malformed notification",
					slog.String("error", fmt.Errorf("%w: %v", domain.ErrInvalidMessage, err).Error()),
					slog.Int("body_size", len(delivery.Body)),
				)
				if nackErr := delivery.Nack(false, false); nackErr != nil {
					w.logger.Error("Failed to NACK malformed message",
						slog.String("error", nackErr.Error()),
					)
				}
				continue
			}

			msg := &domain.NotificationMessage{
				Notification: notification,
				DeliveryTag:  delivery.DeliveryTag,
				Redelivered:  delivery.Redelivered,
				Acknowledger: delivery.Acknowledger,
			}

			select {
			case w.jobsChan <- msg:
				w.logger.Debug("Notification dispatched to worker pool",
					slog.String("event_id", notification.EventID),
					slog.Uint64("delivery_tag", delivery.DeliveryTag),
				)
			case <-ctx.Done():
				w.logger.Info("Message dispatcher stopped while dispatching")
				if nackErr := delivery.Nack(false, true); nackErr != nil {
					w.logger.Error("Failed to NACK message on shutdown",
						slog.String("error", nackErr.Error()),
					)
				}
				return
			}
		}
	}
}
