package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cuongbtq/bid-service/internal/api/domain"
	"github.com/cuongbtq/bid-service/internal/api/model"
	"github.com/cuongbtq/bid-service/internal/api/storage"
	"github.com/cuongbtq/bid-service/shared/events"
	"github.com/google/uuid"
)

// JobInput holds the fields of a new job posting
type JobInput struct {
	HomeownerID string
	Title       string
	Description string
	Budget      float64
}

// CreateJob posts a new job for a homeowner
func (s *Service) CreateJob(ctx context.Context, input JobInput) (job *model.Job, err error) {
	defer func() { observe("create_job", err) }()

	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)

	switch {
	case input.HomeownerID == "":
		return nil, domain.NewValidationError("Homeowner ID is required")
	case input.Title == "":
		return nil, domain.NewValidationError("Job title is required")
	case input.Description == "":
		return nil, domain.NewValidationError("Job description is required")
	}

	if err := domain.CheckAmount("Job budget", input.Budget); err != nil {
		return nil, err
	}

	now := s.now()
	job = &model.Job{
		JobID:       uuid.New().String(),
		HomeownerID: input.HomeownerID,
		Title:       input.Title,
		Description: input.Description,
		Budget:      input.Budget,
		Status:      domain.JobStatusPosted,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.CreateJob(ctx, job); err != nil {
		return nil, err
	}

	s.logger.Info("Job posted",
		slog.String("job_id", job.JobID),
		slog.String("homeowner_id", job.HomeownerID),
	)

	return job, nil
}

// GetJob returns a single job
func (s *Service) GetJob(ctx context.Context, jobID string) (*model.Job, error) {
	return s.repo.GetJobByID(ctx, jobID)
}

// ListJobs returns up to filter.PageSize+1 jobs; the extra row signals another page
func (s *Service) ListJobs(ctx context.Context, filter storage.JobFilter) ([]model.Job, error) {
	if filter.Status != "" && !domain.IsValidJobStatus(filter.Status) {
		return nil, domain.NewValidationError(fmt.Sprintf("Invalid job status %q", filter.Status))
	}
	return s.repo.ListJobs(ctx, filter)
}

// CancelJob cancels a posted or in-progress job. Pending bids are rejected and
// every affected contractor is notified.
func (s *Service) CancelJob(ctx context.Context, jobID, homeownerID string) (job *model.Job, err error) {
	defer func() { observe("cancel_job", err) }()

	current, err := s.repo.GetJobByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if current.HomeownerID != homeownerID {
		return nil, domain.NewNotAuthorizedError("Not authorized to cancel this job")
	}

	if current.Status != domain.JobStatusPosted && current.Status != domain.JobStatusInProgress {
		return nil, domain.ErrJobNotCancellable
	}

	result, err := s.repo.CancelJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Job cancelled",
		slog.String("job_id", jobID),
		slog.Int("rejected_bids", len(result.RejectedBids)),
	)

	var notifications []*events.Notification
	body := fmt.Sprintf("The job %q was cancelled by the homeowner", current.Title)
	if result.Job.ContractorID.Valid {
		n := events.NewNotification(domain.NotificationJobCancelled, result.Job.ContractorID.String, "Job cancelled", body)
		n.JobID = jobID
		notifications = append(notifications, n)
	}
	for i := range result.RejectedBids {
		rejected := &result.RejectedBids[i]
		notifications = append(notifications,
			bidNotification(domain.NotificationJobCancelled, rejected.ContractorID, rejected, "Job cancelled", body))
	}
	s.dispatch(notifications...)

	return result.Job, nil
}

// CompleteJob marks the homeowner's in-progress job as completed
func (s *Service) CompleteJob(ctx context.Context, jobID, homeownerID string) (job *model.Job, err error) {
	defer func() { observe("complete_job", err) }()

	current, err := s.repo.GetJobByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if current.HomeownerID != homeownerID {
		return nil, domain.NewNotAuthorizedError("Not authorized to complete this job")
	}

	if current.Status != domain.JobStatusInProgress {
		return nil, domain.ErrJobNotInProgress
	}

	job, err = s.repo.CompleteJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Job completed",
		slog.String("job_id", jobID),
		slog.String("contractor_id", job.ContractorID.String),
	)

	return job, nil
}
