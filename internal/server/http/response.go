package httpserver

import (
	"github.com/helixir/job-board-service/internal/domain"
)

// jobPostRequest is the JSON request body for creating or updating a job post.
type jobPostRequest struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"required,max=10000"`
	Salary      *float64 `json:"salary" validate:"required,gte=0"`
	WorkModel   string   `json:"workModel" validate:"required,oneof=remote on-site hybrid"`
}

func (r jobPostRequest) params() domain.JobPostParams {
	return domain.JobPostParams{
		Title:       r.Title,
		Description: r.Description,
		Salary:      *r.Salary,
		WorkModel:   domain.WorkModel(r.WorkModel),
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

type validationErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

// reconcileResponse reports a write that was stored but not announced.
type reconcileResponse struct {
	Error     string             `json:"error"`
	Reconcile bool               `json:"reconcile"`
	JobPost   *domain.JobPostDTO `json:"jobPost,omitempty"`
}

type listJobPostsResponse struct {
	JobPosts   []domain.JobPostDTO `json:"jobPosts"`
	TotalCount int                 `json:"totalCount"`
}
