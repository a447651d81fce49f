package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/cuongbtq/bid-service/internal/api/domain"
	"github.com/cuongbtq/bid-service/internal/api/model"
	"github.com/cuongbtq/bid-service/internal/api/storage"
	"github.com/cuongbtq/bid-service/shared/events"
)

// memoryRepo is an in-memory Repository with the same conditional-write
// semantics as the Postgres storage
type memoryRepo struct {
	mu   sync.Mutex
	jobs map[string]model.Job
	bids map[string]model.Bid
	seq  int

	createBidErr error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		jobs: make(map[string]model.Job),
		bids: make(map[string]model.Bid),
	}
}

func (r *memoryRepo) tick() time.Time {
	r.seq++
	return time.Date(2026, 1, 1, 0, 0, r.seq, 0, time.UTC)
}

func (r *memoryRepo) putJob(job model.Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job.CreatedAt = r.tick()
	r.jobs[job.JobID] = job
}

func (r *memoryRepo) putBid(bid model.Bid) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bid.CreatedAt = r.tick()
	r.bids[bid.BidID] = bid
}

func (r *memoryRepo) job(id string) model.Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.jobs[id]
}

func (r *memoryRepo) bid(id string) model.Bid {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bids[id]
}

func (r *memoryRepo) bidCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bids)
}

func (r *memoryRepo) CreateJob(_ context.Context, job *model.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job.CreatedAt = r.tick()
	r.jobs[job.JobID] = *job
	return nil
}

func (r *memoryRepo) GetJobByID(_ context.Context, jobID string) (*model.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[jobID]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	return &job, nil
}

func (r *memoryRepo) ListJobs(_ context.Context, filter storage.JobFilter) ([]model.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	jobs := []model.Job{}
	for _, job := range r.jobs {
		if filter.HomeownerID != "" && job.HomeownerID != filter.HomeownerID {
			continue
		}
		if filter.Status != "" && job.Status != filter.Status {
			continue
		}
		jobs = append(jobs, job)
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].CreatedAt.After(jobs[j].CreatedAt) })
	return jobs, nil
}

func (r *memoryRepo) CompleteJob(_ context.Context, jobID string) (*model.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[jobID]
	if !ok || job.Status != domain.JobStatusInProgress {
		return nil, domain.ErrJobNotInProgress
	}
	job.Status = domain.JobStatusCompleted
	r.jobs[jobID] = job
	return &job, nil
}

func (r *memoryRepo) CancelJob(_ context.Context, jobID string) (*model.CancelResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[jobID]
	if !ok || (job.Status != domain.JobStatusPosted && job.Status != domain.JobStatusInProgress) {
		return nil, domain.ErrJobNotCancellable
	}
	job.Status = domain.JobStatusCancelled
	r.jobs[jobID] = job
	return &model.CancelResult{
		Job:          &job,
		RejectedBids: r.rejectPendingLocked(jobID, "", domain.RejectionReasonJobCancelled),
	}, nil
}

func (r *memoryRepo) CreateBid(_ context.Context, bid *model.Bid) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createBidErr != nil {
		return r.createBidErr
	}
	job, ok := r.jobs[bid.JobID]
	if !ok || job.Status != domain.JobStatusPosted {
		return domain.ErrJobNotAcceptingBids
	}
	for _, b := range r.bids {
		if b.JobID == bid.JobID && b.ContractorID == bid.ContractorID &&
			(b.Status == domain.BidStatusPending || b.Status == domain.BidStatusAccepted) {
			return domain.ErrDuplicateBid
		}
	}
	bid.CreatedAt = r.tick()
	r.bids[bid.BidID] = *bid
	return nil
}

func (r *memoryRepo) GetBidByID(_ context.Context, bidID string) (*model.Bid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bid, ok := r.bids[bidID]
	if !ok {
		return nil, domain.ErrBidNotFound
	}
	return &bid, nil
}

func (r *memoryRepo) HasActiveBid(_ context.Context, jobID, contractorID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bids {
		if b.JobID == jobID && b.ContractorID == contractorID &&
			(b.Status == domain.BidStatusPending || b.Status == domain.BidStatusAccepted) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepo) ListBidsByJob(_ context.Context, jobID string) ([]model.Bid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bids := r.sortedLocked(func(b model.Bid) bool { return b.JobID == jobID })
	return bids, nil
}

func (r *memoryRepo) ListBidsByContractor(_ context.Context, contractorID string) ([]model.Bid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bids := r.sortedLocked(func(b model.Bid) bool { return b.ContractorID == contractorID })
	for i, j := 0, len(bids)-1; i < j; i, j = i+1, j-1 {
		bids[i], bids[j] = bids[j], bids[i]
	}
	return bids, nil
}

func (r *memoryRepo) UpdateBid(_ context.Context, bidID string, amount float64, message string) (*model.Bid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bid, ok := r.bids[bidID]
	if !ok || bid.Status != domain.BidStatusPending {
		return nil, domain.ErrBidNotPending
	}
	bid.Amount = amount
	bid.Message = message
	r.bids[bidID] = bid
	return &bid, nil
}

func (r *memoryRepo) RejectBid(_ context.Context, bidID, reason string) (*model.Bid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.transitionLocked(bidID, domain.BidStatusRejected, reason)
}

func (r *memoryRepo) WithdrawBid(_ context.Context, bidID string) (*model.Bid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.transitionLocked(bidID, domain.BidStatusWithdrawn, "")
}

func (r *memoryRepo) AcceptBid(_ context.Context, bid *model.Bid) (*model.AcceptResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[bid.JobID]
	if !ok || job.Status != domain.JobStatusPosted {
		return nil, domain.ErrJobNoLongerPosted
	}
	current, ok := r.bids[bid.BidID]
	if !ok || current.Status != domain.BidStatusPending {
		return nil, domain.ErrBidNotPending
	}

	job.Status = domain.JobStatusInProgress
	job.ContractorID = sql.NullString{String: bid.ContractorID, Valid: true}
	r.jobs[job.JobID] = job

	accepted, _ := r.transitionLocked(bid.BidID, domain.BidStatusAccepted, "")
	return &model.AcceptResult{
		Bid:          accepted,
		Job:          &job,
		RejectedBids: r.rejectPendingLocked(job.JobID, bid.BidID, domain.RejectionReasonOtherAccepted),
	}, nil
}

func (r *memoryRepo) transitionLocked(bidID, status, reason string) (*model.Bid, error) {
	bid, ok := r.bids[bidID]
	if !ok || bid.Status != domain.BidStatusPending {
		return nil, domain.ErrBidNotPending
	}
	bid.Status = status
	if reason != "" {
		bid.RejectionReason = sql.NullString{String: reason, Valid: true}
	}
	r.bids[bidID] = bid
	return &bid, nil
}

func (r *memoryRepo) rejectPendingLocked(jobID, exceptBidID, reason string) []model.Bid {
	rejected := []model.Bid{}
	for _, b := range r.sortedLocked(func(b model.Bid) bool {
		return b.JobID == jobID && b.BidID != exceptBidID && b.Status == domain.BidStatusPending
	}) {
		updated, _ := r.transitionLocked(b.BidID, domain.BidStatusRejected, reason)
		rejected = append(rejected, *updated)
	}
	return rejected
}

func (r *memoryRepo) sortedLocked(keep func(model.Bid) bool) []model.Bid {
	bids := []model.Bid{}
	for _, b := range r.bids {
		if keep(b) {
			bids = append(bids, b)
		}
	}
	sort.Slice(bids, func(i, j int) bool { return bids[i].CreatedAt.Before(bids[j].CreatedAt) })
	return bids
}

// recordingNotifier captures every notification it is asked to send
type recordingNotifier struct {
	mu   sync.Mutex
	sent []*events.Notification
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, notification *events.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, notification)
	return nil
}

func (n *recordingNotifier) byType(notificationType string) []*events.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []*events.Notification
	for _, sent := range n.sent {
		if sent.Type == notificationType {
			out = append(out, sent)
		}
	}
	return out
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

var errBrokerDown = errors.New("broker down")

func newTestService(t *testing.T) (*Service, *memoryRepo, *recordingNotifier) {
	t.Helper()

	repo := newMemoryRepo()
	notifier := &recordingNotifier{}
	svc := New(&Config{
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Repository: repo,
		Notifier:   notifier,
	})
	t.Cleanup(svc.Wait)

	return svc, repo, notifier
}

// seedMarketplace posts job J1 for H1 with bids B1 ($150 from C1) and B2 ($200 from C2)
func seedMarketplace(repo *memoryRepo) {
	repo.putJob(model.Job{
		JobID:       "J1",
		HomeownerID: "H1",
		Title:       "Fix leaking sink",
		Description: "Kitchen sink drips",
		Budget:      300,
		Status:      domain.JobStatusPosted,
	})
	repo.putBid(model.Bid{
		BidID:        "B1",
		JobID:        "J1",
		ContractorID: "C1",
		Amount:       150,
		Message:      "I can fix this",
		Status:       domain.BidStatusPending,
	})
	repo.putBid(model.Bid{
		BidID:        "B2",
		JobID:        "J1",
		ContractorID: "C2",
		Amount:       200,
		Message:      "Available tomorrow",
		Status:       domain.BidStatusPending,
	})
}
