package handler

import (
	"net/http"

	"github.com/cuongbtq/bid-service/internal/api/dto"
	"github.com/cuongbtq/bid-service/internal/api/service"
	"github.com/gin-gonic/gin"
)

// SubmitBid handles POST /api/v1/jobs/:job_id/bids
func (h *BidHandler) SubmitBid(c *gin.Context) {
	jobID, ok := uuidParam(c, "job_id")
	if !ok {
		return
	}

	var req dto.SubmitBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	bid, err := h.bids.SubmitBid(c.Request.Context(), jobID, req.ContractorID, req.Amount, req.Message)
	if err != nil {
		respondError(c, h.logger, "submit_bid", err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewBidDTO(bid))
}

// ListJobBids handles GET /api/v1/jobs/:job_id/bids
func (h *BidHandler) ListJobBids(c *gin.Context) {
	jobID, ok := uuidParam(c, "job_id")
	if !ok {
		return
	}

	bids, err := h.bids.ListJobBids(c.Request.Context(), jobID)
	if err != nil {
		respondError(c, h.logger, "list_job_bids", err)
		return
	}

	c.JSON(http.StatusOK, dto.ListBidsResponse{Bids: dto.NewBidDTOs(bids)})
}

// ListContractorBids handles GET /api/v1/contractors/:contractor_id/bids
func (h *BidHandler) ListContractorBids(c *gin.Context) {
	bids, err := h.bids.ListContractorBids(c.Request.Context(), c.Param("contractor_id"))
	if err != nil {
		respondError(c, h.logger, "list_contractor_bids", err)
		return
	}

	c.JSON(http.StatusOK, dto.ListBidsResponse{Bids: dto.NewBidDTOs(bids)})
}

// GetBid handles GET /api/v1/bids/:bid_id
func (h *BidHandler) GetBid(c *gin.Context) {
	bidID, ok := uuidParam(c, "bid_id")
	if !ok {
		return
	}

	bid, err := h.bids.GetBid(c.Request.Context(), bidID)
	if err != nil {
		respondError(c, h.logger, "get_bid", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewBidDTO(bid))
}

// UpdateBid handles PATCH /api/v1/bids/:bid_id
func (h *BidHandler) UpdateBid(c *gin.Context) {
	bidID, ok := uuidParam(c, "bid_id")
	if !ok {
		return
	}

	var req dto.UpdateBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	bid, err := h.bids.UpdateBid(c.Request.Context(), bidID, req.ContractorID, service.BidUpdate{
		Amount:  req.Amount,
		Message: req.Message,
	})
	if err != nil {
		respondError(c, h.logger, "update_bid", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewBidDTO(bid))
}

// AcceptBid handles POST /api/v1/bids/:bid_id/accept
func (h *BidHandler) AcceptBid(c *gin.Context) {
	bidID, ok := uuidParam(c, "bid_id")
	if !ok {
		return
	}

	var req dto.HomeownerActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "homeowner_id is required")
		return
	}

	result, err := h.bids.AcceptBid(c.Request.Context(), bidID, req.HomeownerID)
	if err != nil {
		respondError(c, h.logger, "accept_bid", err)
		return
	}

	c.JSON(http.StatusOK, dto.AcceptBidResponse{
		Bid:          dto.NewBidDTO(result.Bid),
		Job:          dto.NewJobDTO(result.Job),
		RejectedBids: dto.NewBidDTOs(result.RejectedBids),
	})
}

// RejectBid handles POST /api/v1/bids/:bid_id/reject
func (h *BidHandler) RejectBid(c *gin.Context) {
	bidID, ok := uuidParam(c, "bid_id")
	if !ok {
		return
	}

	var req dto.RejectBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "homeowner_id is required")
		return
	}

	bid, err := h.bids.RejectBid(c.Request.Context(), bidID, req.HomeownerID, req.Reason)
	if err != nil {
		respondError(c, h.logger, "reject_bid", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewBidDTO(bid))
}

// WithdrawBid handles POST /api/v1/bids/:bid_id/withdraw
func (h *BidHandler) WithdrawBid(c *gin.Context) {
	bidID, ok := uuidParam(c, "bid_id")
	if !ok {
		return
	}

	var req dto.WithdrawBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "contractor_id is required")
		return
	}

	bid, err := h.bids.WithdrawBid(c.Request.Context(), bidID, req.ContractorID)
	if err != nil {
		respondError(c, h.logger, "withdraw_bid", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewBidDTO(bid))
}
