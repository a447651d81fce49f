package storage

import (
	"context"
	"fmt"

	"github.com/cuongbtq/bid-service/internal/api/domain"
	"github.com/cuongbtq/bid-service/internal/api/model"
	"github.com/jmoiron/sqlx"
)

func (s *Storage) CreateJob(ctx context.Context, job *model.Job) error {
	query := `
		INSERT INTO jobs (
			job_id, homeowner_id, contractor_id, title, description,
			budget, status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9
		)
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		job.JobID,
		job.HomeownerID,
		job.ContractorID,
		job.Title,
		job.Description,
		job.Budget,
		job.Status,
		job.CreatedAt,
		job.UpdatedAt,
	)

	if err != nil {
		return writeErr(err, "create job")
	}

	return nil
}

func (s *Storage) GetJobByID(ctx context.Context, jobID string) (*model.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE job_id = $1`

	job, err := getJob(ctx, s.db, query, jobID)
	if err != nil {
		return nil, noRows(err, domain.ErrJobNotFound, "get job")
	}

	return job, nil
}

func (s *Storage) ListJobs(ctx context.Context, filter JobFilter) ([]model.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if filter.HomeownerID != "" {
		query += fmt.Sprintf(" AND homeowner_id = $%d", argIdx)
		args = append(args, filter.HomeownerID)
		argIdx++
	}

	if filter.ContractorID != "" {
		query += fmt.Sprintf(" AND contractor_id = $%d", argIdx)
		args = append(args, filter.ContractorID)
		argIdx++
	}

	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, filter.Status)
		argIdx++
	}

	if filter.Cursor != nil {
		query += fmt.Sprintf(" AND (created_at, job_id) < ($%d, $%d)", argIdx, argIdx+1)
		args = append(args, filter.Cursor.CreatedAt, filter.Cursor.JobID)
		argIdx += 2
	}

	query += " ORDER BY created_at DESC, job_id DESC"

	// Fetch one extra to determine if there are more results
	query += fmt.Sprintf(" LIMIT $%d", argIdx)
	args = append(args, filter.PageSize+1)

	var jobs []model.Job
	err := s.db.SelectContext(ctx, &jobs, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	return jobs, nil
}

// CompleteJob moves an in-progress job to completed
func (s *Storage) CompleteJob(ctx context.Context, jobID string) (*model.Job, error) {
	query := `
		UPDATE jobs
		SET status = $1,
		    updated_at = NOW()
		WHERE job_id = $2
		  AND status = $3
		RETURNING ` + jobColumns

	job, err := getJob(ctx, s.db, query, domain.JobStatusCompleted, jobID, domain.JobStatusInProgress)
	if err != nil {
		return nil, noRows(err, domain.ErrJobNotInProgress, "complete job")
	}

	return job, nil
}

// CancelJob cancels a posted or in-progress job and rejects its pending bids
// in one transaction
func (s *Storage) CancelJob(ctx context.Context, jobID string) (*model.CancelResult, error) {
	cancelQuery := `
		UPDATE jobs
		SET status = $1,
		    updated_at = NOW()
		WHERE job_id = $2
		  AND status IN ($3, $4)
		RETURNING ` + jobColumns

	result := &model.CancelResult{}
	err := s.pg.WithTx(ctx, func(tx *sqlx.Tx) error {
		job, err := getJob(ctx, tx, cancelQuery,
			domain.JobStatusCancelled, jobID, domain.JobStatusPosted, domain.JobStatusInProgress)
		if err != nil {
			return noRows(err, domain.ErrJobNotCancellable, "cancel job")
		}
		result.Job = job

		rejected, err := rejectPendingBids(ctx, tx, jobID, "", domain.RejectionReasonJobCancelled)
		if err != nil {
			return err
		}
		result.RejectedBids = rejected
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
