package dto

import (
	"time"

	"github.com/cuongbtq/bid-service/internal/api/model"
)

type CreateJobRequest struct {
	HomeownerID string  `json:"homeowner_id" binding:"required"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Budget      float64 `json:"budget"`
}

// HomeownerActionRequest identifies the homeowner acting on a job or bid
type HomeownerActionRequest struct {
	HomeownerID string `json:"homeowner_id" binding:"required"`
}

type ListJobsRequest struct {
	HomeownerID  string `form:"homeowner_id"`
	ContractorID string `form:"contractor_id"`
	Status       string `form:"status"`
	PageSize     int    `form:"page_size"`
	Cursor       string `form:"cursor"`
}

type ListJobsResponse struct {
	Jobs       []JobDTO `json:"jobs"`
	NextCursor string   `json:"next_cursor,omitempty"`
}

type JobDTO struct {
	JobID        string  `json:"job_id"`
	HomeownerID  string  `json:"homeowner_id"`
	ContractorID string  `json:"contractor_id,omitempty"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Budget       float64 `json:"budget"`
	Status       string  `json:"status"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

func NewJobDTO(job *model.Job) JobDTO {
	return JobDTO{
		JobID:        job.JobID,
		HomeownerID:  job.HomeownerID,
		ContractorID: job.ContractorID.String,
		Title:        job.Title,
		Description:  job.Description,
		Budget:       job.Budget,
		Status:       job.Status,
		CreatedAt:    job.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    job.UpdatedAt.Format(time.RFC3339),
	}
}
