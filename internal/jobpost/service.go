// Package jobpost implements the job post write path: every mutation is
// applied to the store first and announced on the event stream second.
package jobpost

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/helixir/job-board-service/internal/domain"
	"github.com/helixir/job-board-service/internal/observability"
	"github.com/helixir/job-board-service/internal/repository"
)

// Operation labels used for logging and metrics.
const (
	opCreate = "create"
	opUpdate = "update"
	opDelete = "delete"
)

// EventEmitter publishes job post lifecycle events.
// *events.Producer satisfies it.
type EventEmitter interface {
	EmitCreated(ctx context.Context, dto domain.JobPostDTO) error
	EmitUpdated(ctx context.Context, dto domain.JobPostDTO) error
	EmitDeleted(ctx context.Context, id string) error
}

// Service orchestrates store mutations and lifecycle events for job posts.
//
// Store failures are logged and absorbed: reads degrade to empty/absent
// results and writes return nil/false without emitting anything. A failed
// event after a successful write is returned to the caller, because the
// store has already changed and the gap must be reconciled.
type Service struct {
	store   repository.JobPostStore
	events  EventEmitter
	logger  zerolog.Logger
	metrics *observability.Metrics
}

// NewService creates a new Service. metrics may be nil.
func NewService(store repository.JobPostStore, events EventEmitter, logger zerolog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		store:   store,
		events:  events,
		logger:  logger.With().Str("component", "job_post_service").Logger(),
		metrics: metrics,
	}
}

// List returns all job posts of userID. It never fails: store errors are
// logged and yield an empty slice.
func (s *Service) List(ctx context.Context, userID string) []domain.JobPostDTO {
	logger := observability.LoggerForUser(ctx, s.logger, userID)

	res := s.store.FindAll(ctx, userID)
	if !res.OK() {
		logger.Error().Err(res.Err()).Msg("failed to list job posts")
		return []domain.JobPostDTO{}
	}

	posts := res.Value()
	dtos := make([]domain.JobPostDTO, 0, len(posts))
	for _, post := range posts {
		dto, err := domain.NewJobPostDTO(post)
		if err != nil {
			logger.Error().Err(err).Msg("store returned an unpersisted job post")
			continue
		}
		dtos = append(dtos, dto)
	}
	return dtos
}

// Get returns the job post id of userID, or nil if it does not exist or
// the store failed.
func (s *Service) Get(ctx context.Context, id, userID string) *domain.JobPostDTO {
	logger := observability.WithJobPostID(observability.LoggerForUser(ctx, s.logger, userID), id)

	res := s.store.FindByID(ctx, id, userID)
	if !res.OK() {
		logStoreFailure(logger, res.Err(), "failed to get job post")
		return nil
	}

	dto, err := domain.NewJobPostDTO(res.Value())
	if err != nil {
		logger.Error().Err(err).Msg("store returned an unpersisted job post")
		return nil
	}
	return &dto
}

// Create stores a new job post for userID and emits a created event.
//
// A store failure yields (nil, nil) and no event. If the event cannot be
// published the stored post is returned together with the emission error.
func (s *Service) Create(ctx context.Context, userID string, params domain.JobPostParams) (*domain.JobPostDTO, error) {
	logger := observability.LoggerForUser(ctx, s.logger, userID)

	post := domain.NewJobPost(userID, params)
	res := s.store.Create(ctx, post)
	if !res.OK() {
		logStoreFailure(logger, res.Err(), "failed to create job post")
		s.recordStoreFailure(opCreate, res.Err())
		return nil, nil
	}

	if err := post.Save(res.Value()); err != nil {
		logger.Error().Err(err).Str("job_post_id", res.Value()).Msg("store returned an unusable id")
		s.metrics.RecordMutation(opCreate, observability.OutcomeFailure)
		return nil, nil
	}

	dto, err := domain.NewJobPostDTO(post)
	if err != nil {
		logger.Error().Err(err).Msg("failed to map job post")
		s.metrics.RecordMutation(opCreate, observability.OutcomeFailure)
		return nil, nil
	}

	if err := s.events.EmitCreated(ctx, dto); err != nil {
		logger.Error().Err(err).Str("job_post_id", dto.ID).Msg("job post created but event not published")
		s.metrics.RecordMutation(opCreate, observability.OutcomeEventFailure)
		return &dto, err
	}

	s.metrics.RecordMutation(opCreate, observability.OutcomeSuccess)
	logger.Info().Str("job_post_id", dto.ID).Msg("job post created")
	return &dto, nil
}

// Update overwrites the payload of job post id of userID and emits an
// updated event. Failure semantics match Create.
func (s *Service) Update(ctx context.Context, id, userID string, params domain.JobPostParams) (*domain.JobPostDTO, error) {
	logger := observability.WithJobPostID(observability.LoggerForUser(ctx, s.logger, userID), id)

	post := domain.RestoreJobPost(id, userID, params)
	res := s.store.Update(ctx, post)
	if !res.OK() {
		logStoreFailure(logger, res.Err(), "failed to update job post")
		s.recordStoreFailure(opUpdate, res.Err())
		return nil, nil
	}

	dto, err := domain.NewJobPostDTO(post)
	if err != nil {
		logger.Error().Err(err).Msg("failed to map job post")
		s.metrics.RecordMutation(opUpdate, observability.OutcomeFailure)
		return nil, nil
	}

	if err := s.events.EmitUpdated(ctx, dto); err != nil {
		logger.Error().Err(err).Msg("job post updated but event not published")
		s.metrics.RecordMutation(opUpdate, observability.OutcomeEventFailure)
		return &dto, err
	}

	s.metrics.RecordMutation(opUpdate, observability.OutcomeSuccess)
	logger.Info().Msg("job post updated")
	return &dto, nil
}

// Delete removes job post id of userID and emits a deleted event.
// It reports false when nothing was deleted. If the event cannot be
// published it reports true together with the emission error.
func (s *Service) Delete(ctx context.Context, id, userID string) (bool, error) {
	logger := observability.WithJobPostID(observability.LoggerForUser(ctx, s.logger, userID), id)

	res := s.store.Delete(ctx, id, userID)
	if !res.OK() {
		logStoreFailure(logger, res.Err(), "failed to delete job post")
		s.recordStoreFailure(opDelete, res.Err())
		return false, nil
	}

	if err := s.events.EmitDeleted(ctx, id); err != nil {
		logger.Error().Err(err).Msg("job post deleted but event not published")
		s.metrics.RecordMutation(opDelete, observability.OutcomeEventFailure)
		return true, err
	}

	s.metrics.RecordMutation(opDelete, observability.OutcomeSuccess)
	logger.Info().Msg("job post deleted")
	return true, nil
}

func (s *Service) recordStoreFailure(op string, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		s.metrics.RecordMutation(op, observability.OutcomeNotFound)
		return
	}
	s.metrics.RecordMutation(op, observability.OutcomeFailure)
}

// logStoreFailure logs not-found at warn level and everything else at error level.
func logStoreFailure(logger zerolog.Logger, err error, msg string) {
	if errors.Is(err, domain.ErrNotFound) {
		logger.Warn().Err(err).Msg(msg)
		return
	}
	logger.Error().Err(err).Msg(msg)
}
