package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cuongbtq/bid-service/internal/api/domain"
	"github.com/cuongbtq/bid-service/internal/api/model"
	"github.com/cuongbtq/bid-service/shared/postgresql"
	"github.com/jmoiron/sqlx"
)

// CreateBid inserts a pending bid. The insert only happens while the job is
// still posted; the job row is share-locked so a concurrent accept either
// finishes first (and the insert writes nothing) or waits for this insert.
func (s *Storage) CreateBid(ctx context.Context, bid *model.Bid) error {
	query := `
		INSERT INTO bids (
			bid_id, job_id, contractor_id, amount, message,
			status, rejection_reason, created_at, updated_at
		)
		SELECT $1::text, j.job_id, $3::text, $4::numeric, $5::text,
		       $6::text, $7::text, $8::timestamptz, $9::timestamptz
		FROM jobs j
		WHERE j.job_id = $2
		  AND j.status = $10
		FOR SHARE
	`

	res, err := s.db.ExecContext(
		ctx,
		query,
		bid.BidID,
		bid.JobID,
		bid.ContractorID,
		bid.Amount,
		bid.Message,
		bid.Status,
		bid.RejectionReason,
		bid.CreatedAt,
		bid.UpdatedAt,
		domain.JobStatusPosted,
	)
	if err != nil {
		if postgresql.IsUniqueViolation(err, activeBidIndex) {
			return domain.ErrDuplicateBid
		}
		return writeErr(err, "create bid")
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrJobNotAcceptingBids
	}

	return nil
}

func (s *Storage) GetBidByID(ctx context.Context, bidID string) (*model.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bids WHERE bid_id = $1`

	bid, err := getBid(ctx, s.db, query, bidID)
	if err != nil {
		return nil, noRows(err, domain.ErrBidNotFound, "get bid")
	}

	return bid, nil
}

// HasActiveBid reports whether the contractor has a pending or accepted bid on the job
func (s *Storage) HasActiveBid(ctx context.Context, jobID, contractorID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM bids
			WHERE job_id = $1
			  AND contractor_id = $2
			  AND status IN ($3, $4)
		)
	`

	var exists bool
	err := s.db.GetContext(ctx, &exists, query, jobID, contractorID, domain.BidStatusPending, domain.BidStatusAccepted)
	if err != nil {
		return false, fmt.Errorf("failed to check active bid: %w", err)
	}

	return exists, nil
}

func (s *Storage) ListBidsByJob(ctx context.Context, jobID string) ([]model.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bids WHERE job_id = $1 ORDER BY created_at ASC, bid_id ASC`

	bids := []model.Bid{}
	if err := s.db.SelectContext(ctx, &bids, query, jobID); err != nil {
		return nil, fmt.Errorf("failed to list bids for job: %w", err)
	}

	return bids, nil
}

func (s *Storage) ListBidsByContractor(ctx context.Context, contractorID string) ([]model.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bids WHERE contractor_id = $1 ORDER BY created_at DESC, bid_id DESC`

	bids := []model.Bid{}
	if err := s.db.SelectContext(ctx, &bids, query, contractorID); err != nil {
		return nil, fmt.Errorf("failed to list bids for contractor: %w", err)
	}

	return bids, nil
}

// UpdateBid rewrites amount and message of a bid that is still pending
func (s *Storage) UpdateBid(ctx context.Context, bidID string, amount float64, message string) (*model.Bid, error) {
	query := `
		UPDATE bids
		SET amount = $1,
		    message = $2,
		    updated_at = NOW()
		WHERE bid_id = $3
		  AND status = $4
		RETURNING ` + bidColumns

	bid, err := getBid(ctx, s.db, query, amount, message, bidID, domain.BidStatusPending)
	if err != nil {
		return nil, noRows(err, domain.ErrBidNotPending, "update bid")
	}

	return bid, nil
}

// RejectBid moves a pending bid to rejected, recording the optional reason
func (s *Storage) RejectBid(ctx context.Context, bidID, reason string) (*model.Bid, error) {
	return transitionBid(ctx, s.db, bidID, domain.BidStatusRejected, reason)
}

// WithdrawBid moves a pending bid to withdrawn
func (s *Storage) WithdrawBid(ctx context.Context, bidID string) (*model.Bid, error) {
	return transitionBid(ctx, s.db, bidID, domain.BidStatusWithdrawn, "")
}

// AcceptBid runs the accept workflow as one transaction:
//  1. job posted -> in_progress with the bid's contractor
//  2. bid pending -> accepted
//  3. every other pending bid on the job -> rejected
//
// The job row is updated first so concurrent accepts on the same job queue on
// its row lock; the loser sees status != posted and gets a conflict.
func (s *Storage) AcceptBid(ctx context.Context, bid *model.Bid) (*model.AcceptResult, error) {
	assignQuery := `
		UPDATE jobs
		SET status = $1,
		    contractor_id = $2,
		    updated_at = NOW()
		WHERE job_id = $3
		  AND status = $4
		RETURNING ` + jobColumns

	result := &model.AcceptResult{}
	err := s.pg.WithTx(ctx, func(tx *sqlx.Tx) error {
		job, err := getJob(ctx, tx, assignQuery,
			domain.JobStatusInProgress, bid.ContractorID, bid.JobID, domain.JobStatusPosted)
		if err != nil {
			return noRows(err, domain.ErrJobNoLongerPosted, "assign job")
		}
		result.Job = job

		accepted, err := transitionBid(ctx, tx, bid.BidID, domain.BidStatusAccepted, "")
		if err != nil {
			return err
		}
		result.Bid = accepted

		rejected, err := rejectPendingBids(ctx, tx, bid.JobID, bid.BidID, domain.RejectionReasonOtherAccepted)
		if err != nil {
			return err
		}
		result.RejectedBids = rejected
		return nil
	})
	if err != nil {
		if postgresql.IsUniqueViolation(err, acceptedBidIndex) {
			return nil, domain.ErrJobNoLongerPosted
		}
		return nil, err
	}

	return result, nil
}

// transitionBid conditionally moves a pending bid to a terminal status
func transitionBid(ctx context.Context, q sqlx.QueryerContext, bidID, status, reason string) (*model.Bid, error) {
	query := `
		UPDATE bids
		SET status = $1,
		    rejection_reason = COALESCE($2, rejection_reason),
		    updated_at = NOW()
		WHERE bid_id = $3
		  AND status = $4
		RETURNING ` + bidColumns

	bid, err := getBid(ctx, q, query, status, nullString(reason), bidID, domain.BidStatusPending)
	if err != nil {
		return nil, noRows(err, domain.ErrBidNotPending, "update bid status")
	}

	return bid, nil
}

// rejectPendingBids rejects all pending bids on a job except exceptBidID
func rejectPendingBids(ctx context.Context, tx *sqlx.Tx, jobID, exceptBidID, reason string) ([]model.Bid, error) {
	query := `
		UPDATE bids
		SET status = $1,
		    rejection_reason = $2,
		    updated_at = NOW()
		WHERE job_id = $3
		  AND bid_id <> $4
		  AND status = $5
		RETURNING ` + bidColumns

	rejected := []model.Bid{}
	err := tx.SelectContext(ctx, &rejected, query,
		domain.BidStatusRejected, reason, jobID, exceptBidID, domain.BidStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to reject pending bids: %w", err)
	}

	return rejected, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
