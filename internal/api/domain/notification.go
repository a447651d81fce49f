package domain

// Notification types published when bids and jobs change state
const (
	NotificationBidSubmitted = "bid_submitted"
	NotificationBidAccepted  = "bid_accepted"
	NotificationBidRejected  = "bid_rejected"
	NotificationBidWithdrawn = "bid_withdrawn"
	NotificationJobCancelled = "job_cancelled"
)

var (
	ErrNotificationNotFound = NewNotFoundError("Notification not found")
)
