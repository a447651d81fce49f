package model

import (
	"database/sql"
	"time"
)

type Job struct {
	JobID        string         `db:"job_id"`
	HomeownerID  string         `db:"homeowner_id"`
	ContractorID sql.NullString `db:"contractor_id"`
	Title        string         `db:"title"`
	Description  string         `db:"description"`
	Budget       float64        `db:"budget"`
	Status       string         `db:"status"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

type Bid struct {
	BidID           string         `db:"bid_id"`
	JobID           string         `db:"job_id"`
	ContractorID    string         `db:"contractor_id"`
	Amount          float64        `db:"amount"`
	Message         string         `db:"message"`
	Status          string         `db:"status"`
	RejectionReason sql.NullString `db:"rejection_reason"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

type Notification struct {
	NotificationID string         `db:"notification_id"`
	EventID        string         `db:"event_id"`
	UserID         string         `db:"user_id"`
	Type           string         `db:"type"`
	Title          string         `db:"title"`
	Body           string         `db:"body"`
	JobID          sql.NullString `db:"job_id"`
	BidID          sql.NullString `db:"bid_id"`
	ReadAt         sql.NullTime   `db:"read_at"`
	CreatedAt      time.Time      `db:"created_at"`
}

// AcceptResult is the outcome of a committed accept-bid transaction
type AcceptResult struct {
	Bid          *Bid
	Job          *Job
	RejectedBids []Bid
}

// CancelResult is the outcome of a committed cancel-job transaction
type CancelResult struct {
	Job          *Job
	RejectedBids []Bid
}
