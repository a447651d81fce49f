package handler

import (
	"log/slog"
	"net/http"

	"github.com/cuongbtq/bid-service/internal/api/dto"
	"github.com/cuongbtq/bid-service/internal/api/service"
	"github.com/cuongbtq/bid-service/internal/api/storage"
	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// CreateJob handles POST /api/v1/jobs
func (h *JobHandler) CreateJob(c *gin.Context) {
	var req dto.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("Invalid request body", slog.String("error", err.Error()))
		badRequest(c, "Invalid request body")
		return
	}

	job, err := h.jobs.CreateJob(c.Request.Context(), service.JobInput{
		HomeownerID: req.HomeownerID,
		Title:       req.Title,
		Description: req.Description,
		Budget:      req.Budget,
	})
	if err != nil {
		respondError(c, h.logger, "create_job", err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewJobDTO(job))
}

// GetJob handles GET /api/v1/jobs/:job_id
func (h *JobHandler) GetJob(c *gin.Context) {
	jobID, ok := uuidParam(c, "job_id")
	if !ok {
		return
	}

	job, err := h.jobs.GetJob(c.Request.Context(), jobID)
	if err != nil {
		respondError(c, h.logger, "get_job", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewJobDTO(job))
}

// ListJobs handles GET /api/v1/jobs
func (h *JobHandler) ListJobs(c *gin.Context) {
	var req dto.ListJobsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, "Invalid query parameters")
		return
	}

	if req.PageSize <= 0 {
		req.PageSize = defaultPageSize
	}
	if req.PageSize > maxPageSize {
		req.PageSize = maxPageSize
	}

	cursor, err := DecodeJobCursor(req.Cursor)
	if err != nil {
		h.logger.Debug("Invalid cursor", slog.String("error", err.Error()))
		badRequest(c, "Invalid cursor")
		return
	}

	jobs, err := h.jobs.ListJobs(c.Request.Context(), storage.JobFilter{
		HomeownerID:  req.HomeownerID,
		ContractorID: req.ContractorID,
		Status:       req.Status,
		PageSize:     req.PageSize,
		Cursor:       cursor,
	})
	if err != nil {
		respondError(c, h.logger, "list_jobs", err)
		return
	}

	// storage returns one extra row when another page exists
	hasMore := len(jobs) > req.PageSize
	if hasMore {
		jobs = jobs[:req.PageSize]
	}

	resp := dto.ListJobsResponse{Jobs: make([]dto.JobDTO, len(jobs))}
	for i := range jobs {
		resp.Jobs[i] = dto.NewJobDTO(&jobs[i])
	}

	if hasMore {
		last := jobs[len(jobs)-1]
		resp.NextCursor = EncodeJobCursor(&storage.JobCursor{
			CreatedAt: last.CreatedAt,
			JobID:     last.JobID,
		})
	}

	c.JSON(http.StatusOK, resp)
}

// CancelJob handles POST /api/v1/jobs/:job_id/cancel
func (h *JobHandler) CancelJob(c *gin.Context) {
	jobID, ok := uuidParam(c, "job_id")
	if !ok {
		return
	}

	var req dto.HomeownerActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "homeowner_id is required")
		return
	}

	job, err := h.jobs.CancelJob(c.Request.Context(), jobID, req.HomeownerID)
	if err != nil {
		respondError(c, h.logger, "cancel_job", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewJobDTO(job))
}

// CompleteJob handles POST /api/v1/jobs/:job_id/complete
func (h *JobHandler) CompleteJob(c *gin.Context) {
	jobID, ok := uuidParam(c, "job_id")
	if !ok {
		return
	}

	var req dto.HomeownerActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "homeowner_id is required")
		return
	}

	job, err := h.jobs.CompleteJob(c.Request.Context(), jobID, req.HomeownerID)
	if err != nil {
		respondError(c, h.logger, "complete_job", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewJobDTO(job))
}
