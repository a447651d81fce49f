package domain

// Job status constants
const (
	JobStatusPosted     = "posted"
	JobStatusInProgress = "in_progress"
	JobStatusCompleted  = "completed"
	JobStatusCancelled  = "cancelled"
)

// IsValidJobStatus reports whether status is one of the known job statuses
func IsValidJobStatus(status string) bool {
	switch status {
	case JobStatusPosted, JobStatusInProgress, JobStatusCompleted, JobStatusCancelled:
		return true
	default:
		return false
	}
}

var (
	ErrJobNotFound = NewNotFoundError("Job not found")

	ErrJobNotCancellable = NewConflictError("Job can no longer be cancelled")
	ErrJobNotInProgress  = NewConflictError("Job is not in progress")
)
