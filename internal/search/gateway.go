// Package search provides paginated reads and idempotent writes against a
// document index.
//
// Gateway is generic over the document shape. It translates 1-based pages
// into engine offsets, maps raw hits to documents and reports every outcome
// as a domain.Result; it never returns a bare error.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/helixir/job-board-service/internal/domain"
	"github.com/helixir/job-board-service/internal/observability"
)

// Page is one page of search results.
type Page[T any] struct {
	Data      []T   `json:"data"`
	Page      int   `json:"page"`
	PageSize  int   `json:"pageSize"`
	PageCount int   `json:"pageCount"`
	Total     int64 `json:"total"`
}

// DecodeFunc maps a raw hit to a document.
type DecodeFunc[T any] func(id string, source json.RawMessage) (T, error)

// Option configures a Gateway.
type Option[T any] func(*Gateway[T])

// WithDecoder replaces the default hit mapping. Use it when documents need
// validation beyond carrying an id.
func WithDecoder[T any](fn func(id string, source json.RawMessage) (T, error)) Option[T] {
	return func(g *Gateway[T]) {
		g.decode = fn
	}
}

// WithMetrics records search and index metrics.
func WithMetrics[T any](m *observability.Metrics) Option[T] {
	return func(g *Gateway[T]) {
		g.metrics = m
	}
}

// Gateway performs searches and index mutations for documents of type T.
// It is stateless and safe for concurrent use.
type Gateway[T any] struct {
	engine  Engine
	decode  DecodeFunc[T]
	logger  zerolog.Logger
	metrics *observability.Metrics
}

// NewGateway creates a gateway over engine.
func NewGateway[T any](engine Engine, logger zerolog.Logger, opts ...Option[T]) *Gateway[T] {
	g := &Gateway[T]{
		engine: engine,
		decode: DecodeSource[T],
		logger: logger.With().Str("component", "search_gateway").Logger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Search returns page (1-based) of pageSize documents from index matching
// query. A nil query matches every document.
func (g *Gateway[T]) Search(ctx context.Context, index string, page, pageSize int, query map[string]any) domain.Result[Page[T]] {
	logger := observability.WithSearchContext(g.logger, index, "")

	if page < 1 {
		return domain.Fail[Page[T]](domain.NewValidationError("page", "page must be at least 1"))
	}
	if pageSize < 1 {
		return domain.Fail[Page[T]](domain.NewValidationError("page_size", "page size must be at least 1"))
	}

	start := time.Now()
	resp, err := g.engine.Search(ctx, SearchRequest{
		Index: index,
		Query: query,
		From:  (page - 1) * pageSize,
		Size:  pageSize,
	})
	if err != nil {
		logger.Error().Err(err).Int("page", page).Int("page_size", pageSize).Msg("search failed")
		g.metrics.RecordSearch(index, observability.OutcomeFailure, time.Since(start))
		return domain.Fail[Page[T]](domain.NewSearchTransportError("search", index, err))
	}
	g.metrics.RecordSearch(index, observability.OutcomeSuccess, time.Since(start))

	hits := resp.Hits
	if len(hits) > pageSize {
		hits = hits[:pageSize]
	}

	data := make([]T, 0, len(hits))
	for _, hit := range hits {
		doc, err := g.decode(hit.ID, hit.Source)
		if err != nil {
			logger.Warn().Err(err).Str("document_id", hit.ID).Msg("skipping undecodable hit")
			continue
		}
		data = append(data, doc)
	}

	total := normalizeTotal(resp.Total)
	return domain.Ok(Page[T]{
		Data:      data,
		Page:      page,
		PageSize:  pageSize,
		PageCount: pageCount(total, pageSize),
		Total:     total,
	})
}

// IndexDocument upserts doc under id. The "id" field of doc is not stored
// in the body since the document is addressed by id.
func (g *Gateway[T]) IndexDocument(ctx context.Context, index, id string, doc T) domain.Result[WriteResult] {
	logger := observability.WithSearchContext(g.logger, index, id)

	if id == "" {
		return domain.Fail[WriteResult](domain.NewValidationError("id", "document id is required"))
	}

	body, err := documentBody(doc)
	if err != nil {
		logger.Error().Err(err).Msg("failed to encode document")
		return domain.Fail[WriteResult](domain.NewValidationError("document", err.Error()))
	}

	result, err := g.engine.Index(ctx, index, id, body)
	if err != nil {
		logger.Error().Err(err).Msg("failed to index document")
		g.metrics.RecordIndexOperation("index", "error")
		return domain.Fail[WriteResult](domain.NewSearchTransportError("index", index, err))
	}
	g.metrics.RecordIndexOperation("index", string(result))

	switch result {
	case ResultCreated, ResultUpdated:
		logger.Debug().Str("result", string(result)).Msg("document indexed")
	case ResultNoop:
		logger.Debug().Msg("document unchanged")
	default:
		logger.Warn().Str("result", string(result)).Msg("unexpected index result")
	}
	return domain.Ok(result)
}

// DeleteDocument removes id from index. Deleting an absent document succeeds.
func (g *Gateway[T]) DeleteDocument(ctx context.Context, index, id string) domain.Result[WriteResult] {
	logger := observability.WithSearchContext(g.logger, index, id)

	if id == "" {
		return domain.Fail[WriteResult](domain.NewValidationError("id", "document id is required"))
	}

	result, err := g.engine.Delete(ctx, index, id)
	if err != nil {
		logger.Error().Err(err).Msg("failed to delete document")
		g.metrics.RecordIndexOperation("delete", "error")
		return domain.Fail[WriteResult](domain.NewSearchTransportError("delete", index, err))
	}
	g.metrics.RecordIndexOperation("delete", string(result))

	switch result {
	case ResultDeleted:
		logger.Debug().Msg("document deleted")
	case ResultNotFound:
		logger.Warn().Msg("document not found")
	default:
		logger.Warn().Str("result", string(result)).Msg("unexpected delete result")
	}
	return domain.Ok(result)
}

// DecodeSource is the default hit mapping: the hit id is merged into the
// source fields, and a source "id" field takes precedence.
func DecodeSource[T any](id string, source json.RawMessage) (T, error) {
	var doc T

	fields := map[string]json.RawMessage{}
	if len(source) > 0 && string(source) != "null" {
		if err := json.Unmarshal(source, &fields); err != nil {
			return doc, fmt.Errorf("decode source of %s: %w", id, err)
		}
	}
	if _, ok := fields["id"]; !ok {
		rawID, err := json.Marshal(id)
		if err != nil {
			return doc, fmt.Errorf("encode id %s: %w", id, err)
		}
		fields["id"] = rawID
	}

	merged, err := json.Marshal(fields)
	if err != nil {
		return doc, fmt.Errorf("merge hit %s: %w", id, err)
	}
	if err := json.Unmarshal(merged, &doc); err != nil {
		return doc, fmt.Errorf("decode hit %s: %w", id, err)
	}
	return doc, nil
}

// documentBody encodes doc as a JSON object without its "id" field.
func documentBody(doc any) ([]byte, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("document is not a JSON object: %w", err)
	}
	if fields == nil {
		return nil, fmt.Errorf("document is null")
	}
	delete(fields, "id")

	return json.Marshal(fields)
}

// normalizeTotal reads a hit count given either as a number or as
// {"value": n}. Anything else yields 0, including negative, fractional and
// out-of-range counts.
func normalizeTotal(raw json.RawMessage) int64 {
	if len(raw) == 0 {
		return 0
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return 0
	}
	if wrapped, ok := v.(map[string]any); ok {
		v = wrapped["value"]
	}

	num, ok := v.(json.Number)
	if !ok {
		return 0
	}
	n, err := num.Int64()
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// pageCount is ceil(total / pageSize).
func pageCount(total int64, pageSize int) int {
	size := int64(pageSize)
	count := total / size
	if total%size != 0 {
		count++
	}
	return int(count)
}
