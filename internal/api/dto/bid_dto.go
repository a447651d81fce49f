package dto

import (
	"time"

	"github.com/cuongbtq/bid-service/internal/api/model"
)

// Amount and Message are validated by the service so clients get the
// domain message instead of a binding error
type SubmitBidRequest struct {
	ContractorID string  `json:"contractor_id" binding:"required"`
	Amount       float64 `json:"amount"`
	Message      string  `json:"message"`
}

type UpdateBidRequest struct {
	ContractorID string   `json:"contractor_id" binding:"required"`
	Amount       *float64 `json:"amount"`
	Message      *string  `json:"message"`
}

type RejectBidRequest struct {
	HomeownerID string `json:"homeowner_id" binding:"required"`
	Reason      string `json:"reason"`
}

type WithdrawBidRequest struct {
	ContractorID string `json:"contractor_id" binding:"required"`
}

type BidDTO struct {
	BidID           string  `json:"bid_id"`
	JobID           string  `json:"job_id"`
	ContractorID    string  `json:"contractor_id"`
	Amount          float64 `json:"amount"`
	Message         string  `json:"message"`
	Status          string  `json:"status"`
	RejectionReason string  `json:"rejection_reason,omitempty"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

type ListBidsResponse struct {
	Bids []BidDTO `json:"bids"`
}

type AcceptBidResponse struct {
	Bid          BidDTO   `json:"bid"`
	Job          JobDTO   `json:"job"`
	RejectedBids []BidDTO `json:"rejected_bids"`
}

func NewBidDTO(bid *model.Bid) BidDTO {
	return BidDTO{
		BidID:           bid.BidID,
		JobID:           bid.JobID,
		ContractorID:    bid.ContractorID,
		Amount:          bid.Amount,
		Message:         bid.Message,
		Status:          bid.Status,
		RejectionReason: bid.RejectionReason.String,
		CreatedAt:       bid.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       bid.UpdatedAt.Format(time.RFC3339),
	}
}

func NewBidDTOs(bids []model.Bid) []BidDTO {
	out := make([]BidDTO, len(bids))
	for i := range bids {
		out[i] = NewBidDTO(&bids[i])
	}
	return out
}
