package repository

import (
	"context"

	"github.com/helixir/job-board-service/internal/domain"
)

// JobPostStore is the authoritative store for job posts.
// Every read and write is scoped to the owning user.
type JobPostStore interface {
	// FindAll returns every job post owned by userID, newest first.
	// A user with no posts yields an empty, successful result.
	FindAll(ctx context.Context, userID string) domain.Result[[]*domain.JobPost]

	// FindByID returns the job post with id owned by userID.
	// Fails with domain.ErrNotFound when no such post exists.
	FindByID(ctx context.Context, id, userID string) domain.Result[*domain.JobPost]

	// Create inserts a not-yet-persisted post and returns the assigned id.
	// The post itself is not modified.
	Create(ctx context.Context, post *domain.JobPost) domain.Result[string]

	// Update overwrites the payload of a persisted post and returns its id.
	// Fails with domain.ErrNotFound when the id does not exist for the owner.
	Update(ctx context.Context, post *domain.JobPost) domain.Result[string]

	// Delete removes the post with id owned by userID and returns the id.
	// Fails with domain.ErrNotFound when no such post exists.
	Delete(ctx context.Context, id, userID string) domain.Result[string]
}
