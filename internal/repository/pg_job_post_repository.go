package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/helixir/job-board-service/internal/domain"
)

const jobPostEntity = "job_post"

// Compile-time interface verification.
var _ JobPostStore = (*PgJobPostRepository)(nil)

// PgJobPostRepository is a PostgreSQL implementation of JobPostStore.
type PgJobPostRepository struct {
	db DBTX
}

// NewPgJobPostRepository creates a new PostgreSQL job post repository.
func NewPgJobPostRepository(db DBTX) *PgJobPostRepository {
	return &PgJobPostRepository{db: db}
}

// FindAll retrieves all job posts owned by a user.
func (r *PgJobPostRepository) FindAll(ctx context.Context, userID string) domain.Result[[]*domain.JobPost] {
	query := `
		SELECT id::text, user_id, title, description, salary, work_model
		FROM job_posts
		WHERE user_id = $1
		ORDER BY created_at DESC, id`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return domain.Fail[[]*domain.JobPost](domain.NewStoreError("find all", err))
	}
	defer rows.Close()

	posts := make([]*domain.JobPost, 0)
	for rows.Next() {
		post, err := scanJobPost(rows)
		if err != nil {
			return domain.Fail[[]*domain.JobPost](domain.NewStoreError("find all", err))
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return domain.Fail[[]*domain.JobPost](domain.NewStoreError("find all", fmt.Errorf("error iterating job posts: %w", err)))
	}

	return domain.Ok(posts)
}

// FindByID retrieves a job post by id and owner.
func (r *PgJobPostRepository) FindByID(ctx context.Context, id, userID string) domain.Result[*domain.JobPost] {
	if !isUUID(id) {
		return domain.Fail[*domain.JobPost](domain.NewNotFoundError(jobPostEntity, id))
	}

	query := `
		SELECT id::text, user_id, title, description, salary, work_model
		FROM job_posts
		WHERE id = $1 AND user_id = $2`

	post, err := scanJobPost(r.db.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Fail[*domain.JobPost](domain.NewNotFoundError(jobPostEntity, id))
		}
		return domain.Fail[*domain.JobPost](domain.NewStoreError("find by id", err))
	}

	return domain.Ok(post)
}

// Create inserts a new job post with a freshly generated id.
func (r *PgJobPostRepository) Create(ctx context.Context, post *domain.JobPost) domain.Result[string] {
	if post == nil {
		return domain.Fail[string](domain.NewValidationError("job_post", "job post cannot be nil"))
	}
	if post.IsPersisted() {
		return domain.Fail[string](domain.ErrAlreadyPersisted)
	}

	query := `
		INSERT INTO job_posts (
			id, user_id, title, description, salary, work_model, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, NOW(), NOW()
		)
		RETURNING id::text`

	var id string
	err := r.db.QueryRow(ctx, query,
		uuid.New().String(),
		post.UserID,
		post.Title,
		post.Description,
		post.Salary,
		string(post.WorkModel),
	).Scan(&id)
	if err != nil {
		return domain.Fail[string](domain.NewStoreError("create", err))
	}

	return domain.Ok(id)
}

// Update overwrites the payload of an existing job post.
func (r *PgJobPostRepository) Update(ctx context.Context, post *domain.JobPost) domain.Result[string] {
	if post == nil {
		return domain.Fail[string](domain.NewValidationError("job_post", "job post cannot be nil"))
	}
	if !post.IsPersisted() {
		return domain.Fail[string](domain.ErrNotPersisted)
	}
	if !isUUID(post.ID()) {
		return domain.Fail[string](domain.NewNotFoundError(jobPostEntity, post.ID()))
	}

	query := `
		UPDATE job_posts SET
			title = $3,
			description = $4,
			salary = $5,
			work_model = $6,
			updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING id::text`

	var id string
	err := r.db.QueryRow(ctx, query,
		post.ID(),
		post.UserID,
		post.Title,
		post.Description,
		post.Salary,
		string(post.WorkModel),
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Fail[string](domain.NewNotFoundError(jobPostEntity, post.ID()))
		}
		return domain.Fail[string](domain.NewStoreError("update", err))
	}

	return domain.Ok(id)
}

// Delete removes a job post by id and owner.
func (r *PgJobPostRepository) Delete(ctx context.Context, id, userID string) domain.Result[string] {
	if !isUUID(id) {
		return domain.Fail[string](domain.NewNotFoundError(jobPostEntity, id))
	}

	query := `DELETE FROM job_posts WHERE id = $1 AND user_id = $2 RETURNING id::text`

	var deleted string
	if err := r.db.QueryRow(ctx, query, id, userID).Scan(&deleted); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Fail[string](domain.NewNotFoundError(jobPostEntity, id))
		}
		return domain.Fail[string](domain.NewStoreError("delete", err))
	}

	return domain.Ok(deleted)
}

// scanJobPost scans a row into a restored JobPost.
func scanJobPost(row pgx.Row) (*domain.JobPost, error) {
	var (
		id, userID string
		params     domain.JobPostParams
		workModel  string
	)

	if err := row.Scan(&id, &userID, &params.Title, &params.Description, &params.Salary, &workModel); err != nil {
		return nil, err
	}
	params.WorkModel = domain.WorkModel(workModel)

	return domain.RestoreJobPost(id, userID, params), nil
}

// isUUID reports whether s parses as a UUID. Ids that cannot exist in the
// table are answered as not found without a round trip.
func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
