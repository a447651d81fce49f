package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/cuongbtq/bid-service/internal/worker/domain"
	"github.com/cuongbtq/bid-service/shared/events"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Storage handles all database operations for the worker
type Storage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStorage creates a new Storage instance
func NewStorage(db *sqlx.DB, logger *slog.Logger) *Storage {
	return &Storage{
		db:     db,
		logger: logger,
	}
}

// InsertNotification stores n in the recipient's inbox. It reports false when
// the event was already stored by an earlier delivery. Database failures are
// returned as retryable.
func (s *Storage) InsertNotification(ctx context.Context, n *events.Notification) (bool, error) {
	query := `
		INSERT INTO notifications (
			notification_id, event_id, user_id, type, title,
			body, job_id, bid_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (event_id) DO NOTHING
	`

	result, err := s.db.ExecContext(ctx, query,
		uuid.New().String(),
		n.EventID,
		n.UserID,
		n.Type,
		n.Title,
		n.Body,
		nullString(n.JobID),
		nullString(n.BidID),
		n.OccurredAt,
	)
	if err != nil {
		return false, domain.NewRetryableError(fmt.Errorf("failed to insert notification: %w", err))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, domain.NewRetryableError(fmt.Errorf("failed to get rows affected: %w", err))
	}

	if rows == 0 {
		s.logger.Debug("Notification already stored",
			slog.String("event_id", n.EventID),
		)
		return false, nil
	}

	return true, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
