package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/cuongbtq/bid-service/internal/api/domain"
	"github.com/cuongbtq/bid-service/internal/api/model"
	"github.com/cuongbtq/bid-service/internal/api/service"
	"github.com/cuongbtq/bid-service/internal/api/storage"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// JobService is implemented by *service.Service
type JobService interface {
	CreateJob(ctx context.Context, input service.JobInput) (*model.Job, error)
	GetJob(ctx context.Context, jobID string) (*model.Job, error)
	ListJobs(ctx context.Context, filter storage.JobFilter) ([]model.Job, error)
	CancelJob(ctx context.Context, jobID, homeownerID string) (*model.Job, error)
	CompleteJob(ctx context.Context, jobID, homeownerID string) (*model.Job, error)
}

// BidService is implemented by *service.Service
type BidService interface {
	SubmitBid(ctx context.Context, jobID, contractorID string, amount float64, message string) (*model.Bid, error)
	AcceptBid(ctx context.Context, bidID, homeownerID string) (*model.AcceptResult, error)
	RejectBid(ctx context.Context, bidID, homeownerID, reason string) (*model.Bid, error)
	WithdrawBid(ctx context.Context, bidID, contractorID string) (*model.Bid, error)
	UpdateBid(ctx context.Context, bidID, contractorID string, update service.BidUpdate) (*model.Bid, error)
	GetBid(ctx context.Context, bidID string) (*model.Bid, error)
	ListJobBids(ctx context.Context, jobID string) ([]model.Bid, error)
	ListContractorBids(ctx context.Context, contractorID string) ([]model.Bid, error)
}

// InboxService is implemented by *service.Inbox
type InboxService interface {
	List(ctx context.Context, userID string, unreadOnly bool, limit int) ([]model.Notification, error)
	MarkRead(ctx context.Context, notificationID, userID string) (*model.Notification, error)
}

// HealthChecker is implemented by *postgresql.Client
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// BrokerStatus is implemented by *rabbitmq.Client
type BrokerStatus interface {
	IsConnected() bool
}

// Dependencies holds all dependencies needed by handlers.
// Broker is nil when notification delivery is disabled.
type Dependencies struct {
	Logger      *slog.Logger
	ServiceName string
	Jobs        JobService
	Bids        BidService
	Inbox       InboxService
	DB          HealthChecker
	Broker      BrokerStatus
}

type JobHandler struct {
	logger *slog.Logger
	jobs   JobService
}

func NewJobHandler(deps *Dependencies) *JobHandler {
	return &JobHandler{logger: deps.Logger, jobs: deps.Jobs}
}

type BidHandler struct {
	logger *slog.Logger
	bids   BidService
}

func NewBidHandler(deps *Dependencies) *BidHandler {
	return &BidHandler{logger: deps.Logger, bids: deps.Bids}
}

type NotificationHandler struct {
	logger *slog.Logger
	inbox  InboxService
}

func NewNotificationHandler(deps *Dependencies) *NotificationHandler {
	return &NotificationHandler{logger: deps.Logger, inbox: deps.Inbox}
}

// statusFor maps an error kind to its HTTP status
func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindNotAuthorized:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"error", "code"} for err. Internal errors are logged
// and their details withheld from the client.
func respondError(c *gin.Context, logger *slog.Logger, op string, err error) {
	kind := domain.KindOf(err)
	if kind == domain.KindInternal {
		logger.Error("Request failed",
			slog.String("operation", op),
			slog.String("path", c.Request.URL.Path),
			slog.String("error", err.Error()),
		)
	}

	c.JSON(statusFor(kind), gin.H{
		"error": domain.MessageOf(err),
		"code":  string(kind),
	})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error": message,
		"code":  string(domain.KindValidation),
	})
}

// uuidParam returns the named path parameter, writing a 400 when it is not a UUID
func uuidParam(c *gin.Context, name string) (string, bool) {
	value := c.Param(name)
	if _, err := uuid.Parse(value); err != nil {
		badRequest(c, name+" must be a valid UUID")
		return "", false
	}
	return value, true
}
