// Package domain provides domain models and business logic for the Job Board Service.
package domain

import (
	"fmt"
	"strings"
)

// WorkModel represents where the work of a job post is performed.
// These values must match the work_model check constraint of job_posts.
type WorkModel string

const (
	WorkModelRemote WorkModel = "remote"
	WorkModelOnSite WorkModel = "on-site"
	WorkModelHybrid WorkModel = "hybrid"
)

// IsValid returns true if the work model is one of the supported values.
func (m WorkModel) IsValid() bool {
	switch m {
	case WorkModelRemote, WorkModelOnSite, WorkModelHybrid:
		return true
	default:
		return false
	}
}

// ParseWorkModel converts a string to a WorkModel, ignoring case and surrounding space.
func ParseWorkModel(s string) (WorkModel, error) {
	m := WorkModel(strings.ToLower(strings.TrimSpace(s)))
	if !m.IsValid() {
		return "", NewValidationError("work_model", fmt.Sprintf("unsupported work model %q", s))
	}
	return m, nil
}

// JobPostParams is the caller-supplied payload of a job post.
type JobPostParams struct {
	Title       string
	Description string
	Salary      float64
	WorkModel   WorkModel
}

// Validate checks the payload shape and enum constraints.
func (p JobPostParams) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return NewValidationError("title", "title is required")
	}
	if strings.TrimSpace(p.Description) == "" {
		return NewValidationError("description", "description is required")
	}
	if p.Salary < 0 {
		return NewValidationError("salary", "salary must not be negative")
	}
	if !p.WorkModel.IsValid() {
		return NewValidationError("work_model", fmt.Sprintf("unsupported work model %q", p.WorkModel))
	}
	return nil
}

// JobPost is a posting owned by a user.
//
// A job post is persisted iff its ID is non-empty. The ID of a new post is
// assigned exactly once through Save after the store acknowledged the insert.
type JobPost struct {
	id          string
	UserID      string
	Title       string
	Description string
	Salary      float64
	WorkModel   WorkModel
}

// NewJobPost creates a job post that has not been persisted yet.
func NewJobPost(userID string, params JobPostParams) *JobPost {
	return &JobPost{
		UserID:      userID,
		Title:       params.Title,
		Description: params.Description,
		Salary:      params.Salary,
		WorkModel:   params.WorkModel,
	}
}

// RestoreJobPost rebuilds a job post that already exists in the store.
func RestoreJobPost(id, userID string, params JobPostParams) *JobPost {
	post := NewJobPost(userID, params)
	post.id = id
	return post
}

// ID returns the store-assigned identifier, or "" if the post is not persisted.
func (p *JobPost) ID() string {
	return p.id
}

// IsPersisted reports whether the post carries a store-assigned identifier.
func (p *JobPost) IsPersisted() bool {
	return p.id != ""
}

// Save records the identifier assigned by the store.
// It fails if id is empty or the post already has an identifier.
func (p *JobPost) Save(id string) error {
	if id == "" {
		return NewValidationError("id", "id is required")
	}
	if p.id != "" {
		return fmt.Errorf("job post %s: %w", p.id, ErrAlreadyPersisted)
	}
	p.id = id
	return nil
}

// Params returns the payload portion of the post.
func (p *JobPost) Params() JobPostParams {
	return JobPostParams{
		Title:       p.Title,
		Description: p.Description,
		Salary:      p.Salary,
		WorkModel:   p.WorkModel,
	}
}

// JobPostDTO is the read-only projection of a persisted job post.
// It is the value published on job-posts.created / job-posts.updated and the
// shape of documents in the search index.
type JobPostDTO struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Salary      float64   `json:"salary"`
	WorkModel   WorkModel `json:"workModel"`
}

// NewJobPostDTO maps a persisted job post to its transfer representation.
// Returns ErrNotPersisted if the post has no identifier.
func NewJobPostDTO(post *JobPost) (JobPostDTO, error) {
	if post == nil || !post.IsPersisted() {
		return JobPostDTO{}, ErrNotPersisted
	}
	return JobPostDTO{
		ID:          post.id,
		UserID:      post.UserID,
		Title:       post.Title,
		Description: post.Description,
		Salary:      post.Salary,
		WorkModel:   post.WorkModel,
	}, nil
}
