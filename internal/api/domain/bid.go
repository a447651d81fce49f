package domain

// Bid status constants. pending is the only non-terminal status.
const (
	BidStatusPending   = "pending"
	BidStatusAccepted  = "accepted"
	BidStatusRejected  = "rejected"
	BidStatusWithdrawn = "withdrawn"
)

// Reasons recorded on bids rejected as a side effect of another operation
const (
	RejectionReasonOtherAccepted = "Another bid was accepted"
	RejectionReasonJobCancelled  = "Job was cancelled"
)

// IsValidBidStatus reports whether status is one of the known bid statuses
func IsValidBidStatus(status string) bool {
	switch status {
	case BidStatusPending, BidStatusAccepted, BidStatusRejected, BidStatusWithdrawn:
		return true
	default:
		return false
	}
}

var (
	ErrBidNotFound = NewNotFoundError("Bid not found")

	ErrBidAlreadyAccepted  = NewConflictError("Bid has already been accepted")
	ErrBidNotPending       = NewConflictError("Bid is no longer pending")
	ErrJobNotAcceptingBids = NewConflictError("Job is not accepting bids")
	ErrJobNoLongerPosted   = NewConflictError("Job is no longer accepting bids")
	ErrDuplicateBid        = NewConflictError("You already have an active bid on this job")
)
