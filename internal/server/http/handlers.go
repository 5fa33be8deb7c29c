package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/helixir/job-board-service/internal/domain"
	"github.com/helixir/job-board-service/internal/observability"
)

const maxRequestBodySize = 1 << 20 // 1 MB limit for request bodies

// listJobPosts handles GET /users/{userID}/job-posts.
func (s *Server) listJobPosts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	posts := s.jobPosts.List(ctx, observability.UserIDFromContext(ctx))

	writeJSON(w, http.StatusOK, listJobPostsResponse{
		JobPosts:   posts,
		TotalCount: len(posts),
	})
}

// getJobPost handles GET /users/{userID}/job-posts/{jobPostID}.
func (s *Server) getJobPost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	post := s.jobPosts.Get(ctx, chi.URLParam(r, "jobPostID"), observability.UserIDFromContext(ctx))
	if post == nil {
		writeError(w, http.StatusNotFound, "job post not found")
		return
	}

	writeJSON(w, http.StatusOK, post)
}

// createJobPost handles POST /users/{userID}/job-posts.
func (s *Server) createJobPost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := s.decodeJobPostRequest(w, r)
	if !ok {
		return
	}

	post, err := s.jobPosts.Create(ctx, observability.UserIDFromContext(ctx), req.params())
	if err != nil {
		writeWriteError(w, err, post)
		return
	}
	if post == nil {
		writeError(w, http.StatusInternalServerError, "failed to create job post")
		return
	}

	writeJSON(w, http.StatusCreated, post)
}

// updateJobPost handles PUT /users/{userID}/job-posts/{jobPostID}.
func (s *Server) updateJobPost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := s.decodeJobPostRequest(w, r)
	if !ok {
		return
	}

	post, err := s.jobPosts.Update(ctx, chi.URLParam(r, "jobPostID"), observability.UserIDFromContext(ctx), req.params())
	if err != nil {
		writeWriteError(w, err, post)
		return
	}
	if post == nil {
		writeError(w, http.StatusNotFound, "job post not found")
		return
	}

	writeJSON(w, http.StatusOK, post)
}

// deleteJobPost handles DELETE /users/{userID}/job-posts/{jobPostID}.
func (s *Server) deleteJobPost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	deleted, err := s.jobPosts.Delete(ctx, chi.URLParam(r, "jobPostID"), observability.UserIDFromContext(ctx))
	if err != nil {
		writeWriteError(w, err, nil)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "job post not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// searchJobPosts handles GET /job-posts/search.
// An empty q matches every job post.
func (s *Server) searchJobPosts(w http.ResponseWriter, r *http.Request) {
	page, pageSize, ok := s.parseSearchPagination(w, r)
	if !ok {
		return
	}

	var query map[string]any
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		query = map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"title^2", "description"},
			},
		}
	}

	res := s.searcher.Search(r.Context(), s.cfg.SearchIndex, page, pageSize, query)
	if !res.OK() {
		if errors.Is(res.Err(), domain.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, res.Err().Error())
			return
		}
		writeError(w, http.StatusBadGateway, "search is unavailable")
		return
	}

	writeJSON(w, http.StatusOK, res.Value())
}

// decodeJobPostRequest reads and validates the request body, writing a 400
// response and returning false on failure.
func (s *Server) decodeJobPostRequest(w http.ResponseWriter, r *http.Request) (jobPostRequest, bool) {
	var req jobPostRequest

	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return req, false
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON request body")
		return req, false
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.WorkModel = strings.ToLower(strings.TrimSpace(req.WorkModel))

	if err := s.validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return req, false
	}
	return req, true
}

// parseSearchPagination reads page and page_size. Missing values take their
// defaults and page_size is capped at the configured maximum.
func (s *Server) parseSearchPagination(w http.ResponseWriter, r *http.Request) (page, pageSize int, ok bool) {
	page = 1
	if v := r.URL.Query().Get("page"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "page must be a positive integer")
			return 0, 0, false
		}
		page = parsed
	}

	pageSize = s.cfg.DefaultPageSize
	if v := r.URL.Query().Get("page_size"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "page_size must be a positive integer")
			return 0, 0, false
		}
		pageSize = parsed
	}
	if s.cfg.MaxPageSize > 0 && pageSize > s.cfg.MaxPageSize {
		pageSize = s.cfg.MaxPageSize
	}

	return page, pageSize, true
}

// writeWriteError maps an error returned after a store write. An event
// emission failure means the write happened, so the client is told to
// reconcile rather than retry blindly.
func writeWriteError(w http.ResponseWriter, err error, post *domain.JobPostDTO) {
	if errors.Is(err, domain.ErrEventEmission) {
		writeJSON(w, http.StatusBadGateway, reconcileResponse{
			Error:     "change stored but not published",
			Reconcile: true,
			JobPost:   post,
		})
		return
	}
	writeDomainError(w, err)
}

// writeDomainError maps domain errors to appropriate HTTP status codes
// and writes a JSON error response. Internal error details are not leaked to clients.
func writeDomainError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "resource not found")
	case errors.Is(err, domain.ErrInvalidInput):
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, ve.Error())
		} else {
			writeError(w, http.StatusBadRequest, "invalid input")
		}
	case errors.Is(err, domain.ErrSearchTransport):
		writeError(w, http.StatusBadGateway, "search is unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// writeValidationError writes a 400 response listing the failed rule per
// JSON field name.
func writeValidationError(w http.ResponseWriter, err error) {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	jsonNames := jsonFieldNames(reflect.TypeOf(jobPostRequest{}))
	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		name, ok := jsonNames[fe.StructField()]
		if !ok {
			name = strings.ToLower(fe.Field())
		}
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		fields[name] = rule
	}

	writeJSON(w, http.StatusBadRequest, validationErrorResponse{
		Error:  "validation failed",
		Fields: fields,
	})
}

// jsonFieldNames maps struct field names of t to their JSON names.
func jsonFieldNames(t reflect.Type) map[string]string {
	names := make(map[string]string, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name != "" && name != "-" {
			names[f.Name] = name
		}
	}
	return names
}
