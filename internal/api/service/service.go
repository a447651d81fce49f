package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cuongbtq/bid-service/internal/api/domain"
	"github.com/cuongbtq/bid-service/internal/api/model"
	"github.com/cuongbtq/bid-service/internal/api/storage"
	"github.com/cuongbtq/bid-service/internal/metrics"
	"github.com/cuongbtq/bid-service/shared/events"
)

const defaultNotifyTimeout = 5 * time.Second

// Repository is the persistence the marketplace needs. Every status change is
// a conditional write that fails with a conflict when the precondition no
// longer holds.
type Repository interface {
	CreateJob(ctx context.Context, job *model.Job) error
	GetJobByID(ctx context.Context, jobID string) (*model.Job, error)
	ListJobs(ctx context.Context, filter storage.JobFilter) ([]model.Job, error)
	CompleteJob(ctx context.Context, jobID string) (*model.Job, error)
	CancelJob(ctx context.Context, jobID string) (*model.CancelResult, error)

	CreateBid(ctx context.Context, bid *model.Bid) error
	GetBidByID(ctx context.Context, bidID string) (*model.Bid, error)
	HasActiveBid(ctx context.Context, jobID, contractorID string) (bool, error)
	ListBidsByJob(ctx context.Context, jobID string) ([]model.Bid, error)
	ListBidsByContractor(ctx context.Context, contractorID string) ([]model.Bid, error)
	UpdateBid(ctx context.Context, bidID string, amount float64, message string) (*model.Bid, error)
	RejectBid(ctx context.Context, bidID, reason string) (*model.Bid, error)
	WithdrawBid(ctx context.Context, bidID string) (*model.Bid, error)
	AcceptBid(ctx context.Context, bid *model.Bid) (*model.AcceptResult, error)
}

// Notifier delivers a notification to the other party of an operation
type Notifier interface {
	Notify(ctx context.Context, n *events.Notification) error
}

// Config holds service dependencies
type Config struct {
	Logger        *slog.Logger
	Repository    Repository
	Notifier      Notifier
	NotifyTimeout time.Duration
}

// Service implements job posting and the bid lifecycle
type Service struct {
	logger        *slog.Logger
	repo          Repository
	notifier      Notifier
	notifyTimeout time.Duration
	now           func() time.Time
	wg            sync.WaitGroup
}

// New creates a new Service
func New(cfg *Config) *Service {
	timeout := cfg.NotifyTimeout
	if timeout <= 0 {
		timeout = defaultNotifyTimeout
	}

	return &Service{
		logger:        cfg.Logger,
		repo:          cfg.Repository,
		notifier:      cfg.Notifier,
		notifyTimeout: timeout,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Wait blocks until all in-flight notifications have been handed off
func (s *Service) Wait() {
	s.wg.Wait()
}

// dispatch sends notifications in the background. Failures are logged and
// never reach the caller of the originating operation.
func (s *Service) dispatch(notifications ...*events.Notification) {
	if s.notifier == nil || len(notifications) == 0 {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.notifyTimeout)
		defer cancel()

		for _, n := range notifications {
			if err := s.notifier.Notify(ctx, n); err != nil {
				s.logger.Warn("Failed to send notification",
					slog.String("event_id", n.EventID),
					slog.String("type", n.Type),
					slog.String("user_id", n.UserID),
					slog.String("error", err.Error()),
				)
				metrics.NotificationsPublished.WithLabelValues(n.Type, "failed").Inc()
				continue
			}
			metrics.NotificationsPublished.WithLabelValues(n.Type, "ok").Inc()
		}
	}()
}

// observe records the outcome of an operation
func observe(operation string, err error) {
	result := "ok"
	if err != nil {
		result = string(domain.KindOf(err))
	}
	metrics.MarketplaceOperations.WithLabelValues(operation, result).Inc()
}
