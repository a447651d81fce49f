package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cuongbtq/bid-service/internal/api/domain"
	"github.com/cuongbtq/bid-service/internal/api/model"
	"github.com/cuongbtq/bid-service/shared/postgresql"
	"github.com/jmoiron/sqlx"
)

const (
	jobColumns = `job_id, homeowner_id, contractor_id, title, description,
		budget, status, created_at, updated_at`

	bidColumns = `bid_id, job_id, contractor_id, amount, message,
		status, rejection_reason, created_at, updated_at`

	notificationColumns = `notification_id, event_id, user_id, type, title,
		body, job_id, bid_id, read_at, created_at`

	// Unique partial indexes from migrations/001_init.sql
	acceptedBidIndex = "uq_bids_one_accepted_per_job"
	activeBidIndex   = "uq_bids_active_per_contractor"
)

type Storage struct {
	pg *postgresql.Client
	db *sqlx.DB
}

func NewStorage(pg *postgresql.Client) *Storage {
	return &Storage{
		pg: pg,
		db: pg.GetDB(),
	}
}

type JobFilter struct {
	HomeownerID  string
	ContractorID string
	Status       string
	PageSize     int
	Cursor       *JobCursor
}

type JobCursor struct {
	CreatedAt time.Time
	JobID     string
}

// getJob and getBid accept either the pool or a transaction
func getJob(ctx context.Context, q sqlx.QueryerContext, query string, args ...interface{}) (*model.Job, error) {
	var job model.Job
	if err := sqlx.GetContext(ctx, q, &job, query, args...); err != nil {
		return nil, err
	}
	return &job, nil
}

func getBid(ctx context.Context, q sqlx.QueryerContext, query string, args ...interface{}) (*model.Bid, error) {
	var bid model.Bid
	if err := sqlx.GetContext(ctx, q, &bid, query, args...); err != nil {
		return nil, err
	}
	return &bid, nil
}

// noRows converts sql.ErrNoRows into target and wraps everything else
func noRows(err error, target error, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return target
	}
	return writeErr(err, op)
}

// writeErr maps values the schema refuses to a validation error
func writeErr(err error, op string) error {
	if postgresql.IsInvalidValue(err) {
		return domain.ErrAmountOutOfRange
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
