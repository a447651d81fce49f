package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cuongbtq/bid-service/internal/api/domain"
	"github.com/cuongbtq/bid-service/internal/api/model"
	"github.com/cuongbtq/bid-service/shared/events"
	"github.com/google/uuid"
)

// BidUpdate holds the fields a contractor may change on a pending bid.
// Nil fields are left unchanged.
type BidUpdate struct {
	Amount  *float64
	Message *string
}

// SubmitBid places a pending bid from contractorID on a posted job
func (s *Service) SubmitBid(ctx context.Context, jobID, contractorID string, amount float64, message string) (bid *model.Bid, err error) {
	defer func() { observe("submit_bid", err) }()

	if contractorID == "" {
		return nil, domain.NewValidationError("Contractor ID is required")
	}

	message = strings.TrimSpace(message)
	if err := validateBid(amount, message); err != nil {
		return nil, err
	}

	job, err := s.repo.GetJobByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if job.Status != domain.JobStatusPosted {
		return nil, domain.ErrJobNotAcceptingBids
	}

	if job.HomeownerID == contractorID {
		return nil, domain.NewValidationError("Cannot bid on your own job")
	}

	exists, err := s.repo.HasActiveBid(ctx, jobID, contractorID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrDuplicateBid
	}

	now := s.now()
	bid = &model.Bid{
		BidID:        uuid.New().String(),
		JobID:        jobID,
		ContractorID: contractorID,
		Amount:       amount,
		Message:      message,
		Status:       domain.BidStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.CreateBid(ctx, bid); err != nil {
		return nil, err
	}

	s.logger.Info("Bid submitted",
		slog.String("bid_id", bid.BidID),
		slog.String("job_id", jobID),
		slog.String("contractor_id", contractorID),
		slog.Float64("amount", amount),
	)

	s.dispatch(bidNotification(domain.NotificationBidSubmitted, job.HomeownerID, bid,
		"New bid received",
		fmt.Sprintf("A contractor bid %s on %q", formatAmount(amount), job.Title)))

	return bid, nil
}

// AcceptBid accepts a bid on behalf of the job's homeowner. The bid is
// accepted, the job is assigned to the bid's contractor and every other
// pending bid on the job is rejected, all in one transaction.
func (s *Service) AcceptBid(ctx context.Context, bidID, homeownerID string) (result *model.AcceptResult, err error) {
	defer func() { observe("accept_bid", err) }()

	bid, job, err := s.loadBidAndJob(ctx, bidID)
	if err != nil {
		return nil, err
	}

	if job.HomeownerID != homeownerID {
		return nil, domain.NewNotAuthorizedError("Not authorized to accept this bid")
	}

	if bid.Status == domain.BidStatusAccepted {
		return nil, domain.ErrBidAlreadyAccepted
	}
	if bid.Status != domain.BidStatusPending {
		return nil, domain.ErrBidNotPending
	}
	if job.Status != domain.JobStatusPosted {
		return nil, domain.ErrJobNoLongerPosted
	}

	result, err = s.repo.AcceptBid(ctx, bid)
	if err != nil {
		s.logger.Warn("Accept bid failed",
			slog.String("bid_id", bidID),
			slog.String("job_id", bid.JobID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.logger.Info("Bid accepted",
		slog.String("bid_id", bidID),
		slog.String("job_id", job.JobID),
		slog.String("contractor_id", bid.ContractorID),
		slog.Int("rejected_bids", len(result.RejectedBids)),
	)

	notifications := []*events.Notification{
		bidNotification(domain.NotificationBidAccepted, result.Bid.ContractorID, result.Bid,
			"Bid accepted",
			fmt.Sprintf("Your bid of %s on %q was accepted", formatAmount(result.Bid.Amount), job.Title)),
	}
	for i := range result.RejectedBids {
		rejected := &result.RejectedBids[i]
		notifications = append(notifications, bidNotification(domain.NotificationBidRejected, rejected.ContractorID, rejected,
			"Bid not selected",
			fmt.Sprintf("Another bid was accepted for %q", job.Title)))
	}
	s.dispatch(notifications...)

	return result, nil
}

// RejectBid rejects a pending bid on behalf of the job's homeowner
func (s *Service) RejectBid(ctx context.Context, bidID, homeownerID, reason string) (bid *model.Bid, err error) {
	defer func() { observe("reject_bid", err) }()

	current, job, err := s.loadBidAndJob(ctx, bidID)
	if err != nil {
		return nil, err
	}

	if job.HomeownerID != homeownerID {
		return nil, domain.NewNotAuthorizedError("Not authorized to reject this bid")
	}

	if current.Status == domain.BidStatusAccepted {
		return nil, domain.ErrBidAlreadyAccepted
	}
	if current.Status != domain.BidStatusPending {
		return nil, domain.ErrBidNotPending
	}

	reason = strings.TrimSpace(reason)
	bid, err = s.repo.RejectBid(ctx, bidID, reason)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Bid rejected",
		slog.String("bid_id", bidID),
		slog.String("job_id", job.JobID),
		slog.String("reason", reason),
	)

	body := fmt.Sprintf("Your bid on %q was declined", job.Title)
	if reason != "" {
		body += ": " + reason
	}
	s.dispatch(bidNotification(domain.NotificationBidRejected, bid.ContractorID, bid, "Bid declined", body))

	return bid, nil
}

// WithdrawBid lets a contractor take back their own pending bid
func (s *Service) WithdrawBid(ctx context.Context, bidID, contractorID string) (bid *model.Bid, err error) {
	defer func() { observe("withdraw_bid", err) }()

	current, err := s.repo.GetBidByID(ctx, bidID)
	if err != nil {
		return nil, err
	}

	if current.ContractorID != contractorID {
		return nil, domain.NewNotAuthorizedError("Not authorized to withdraw this bid")
	}

	if current.Status == domain.BidStatusAccepted {
		return nil, domain.NewValidationError("Cannot withdraw an accepted bid")
	}
	if current.Status != domain.BidStatusPending {
		return nil, domain.NewValidationError("Cannot withdraw a bid that is not pending")
	}

	bid, err = s.repo.WithdrawBid(ctx, bidID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Bid withdrawn",
		slog.String("bid_id", bidID),
		slog.String("job_id", bid.JobID),
		slog.String("contractor_id", contractorID),
	)

	job, err := s.repo.GetJobByID(ctx, bid.JobID)
	if err != nil {
		s.logger.Warn("Skipping withdraw notification, job lookup failed",
			slog.String("job_id", bid.JobID),
			slog.String("error", err.Error()),
		)
		return bid, nil
	}

	s.dispatch(bidNotification(domain.NotificationBidWithdrawn, job.HomeownerID, bid,
		"Bid withdrawn",
		fmt.Sprintf("A contractor withdrew their bid on %q", job.Title)))

	return bid, nil
}

// UpdateBid changes amount and/or message of the contractor's pending bid
func (s *Service) UpdateBid(ctx context.Context, bidID, contractorID string, update BidUpdate) (bid *model.Bid, err error) {
	defer func() { observe("update_bid", err) }()

	current, err := s.repo.GetBidByID(ctx, bidID)
	if err != nil {
		return nil, err
	}

	if current.ContractorID != contractorID {
		return nil, domain.NewNotAuthorizedError("Not authorized to update this bid")
	}

	if current.Status != domain.BidStatusPending {
		return nil, domain.NewValidationError("Cannot update a bid that is not pending")
	}

	if update.Amount == nil && update.Message == nil {
		return nil, domain.NewValidationError("No bid updates provided")
	}

	amount := current.Amount
	if update.Amount != nil {
		amount = *update.Amount
	}
	message := current.Message
	if update.Message != nil {
		message = strings.TrimSpace(*update.Message)
	}

	if err := validateBid(amount, message); err != nil {
		return nil, err
	}

	bid, err = s.repo.UpdateBid(ctx, bidID, amount, message)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Bid updated",
		slog.String("bid_id", bidID),
		slog.Float64("amount", amount),
	)

	return bid, nil
}

// GetBid returns a single bid
func (s *Service) GetBid(ctx context.Context, bidID string) (*model.Bid, error) {
	return s.repo.GetBidByID(ctx, bidID)
}

// ListJobBids returns every bid placed on a job, oldest first
func (s *Service) ListJobBids(ctx context.Context, jobID string) ([]model.Bid, error) {
	if _, err := s.repo.GetJobByID(ctx, jobID); err != nil {
		return nil, err
	}
	return s.repo.ListBidsByJob(ctx, jobID)
}

// ListContractorBids returns a contractor's bids, newest first
func (s *Service) ListContractorBids(ctx context.Context, contractorID string) ([]model.Bid, error) {
	return s.repo.ListBidsByContractor(ctx, contractorID)
}

func (s *Service) loadBidAndJob(ctx context.Context, bidID string) (*model.Bid, *model.Job, error) {
	bid, err := s.repo.GetBidByID(ctx, bidID)
	if err != nil {
		return nil, nil, err
	}

	job, err := s.repo.GetJobByID(ctx, bid.JobID)
	if err != nil {
		return nil, nil, err
	}

	return bid, job, nil
}

func validateBid(amount float64, message string) error {
	if err := domain.CheckAmount("Bid amount", amount); err != nil {
		return err
	}
	if message == "" {
		return domain.NewValidationError("Bid message is required")
	}
	return nil
}

func bidNotification(notificationType, userID string, bid *model.Bid, title, body string) *events.Notification {
	n := events.NewNotification(notificationType, userID, title, body)
	n.JobID = bid.JobID
	n.BidID = bid.BidID
	return n
}

func formatAmount(amount float64) string {
	return fmt.Sprintf("$%.2f", amount)
}
