package search

import (
	"context"
	"encoding/json"
)

// WriteResult is the engine's report for an index or delete call.
type WriteResult string

// Results reported by the engine. Every one of them is a success: index and
// delete are idempotent, so replays and out-of-order deletes are not errors.
const (
	ResultCreated  WriteResult = "created"
	ResultUpdated  WriteResult = "updated"
	ResultNoop     WriteResult = "noop"
	ResultDeleted  WriteResult = "deleted"
	ResultNotFound WriteResult = "not_found"
)

// SearchRequest is one engine-level paginated query.
type SearchRequest struct {
	Index string
	// Query is the engine query clause. Nil means match all.
	Query map[string]any
	From  int
	Size  int
}

// Hit is one raw search hit.
type Hit struct {
	ID     string          `json:"_id"`
	Source json.RawMessage `json:"_source"`
}

// SearchResponse is the raw engine answer to a SearchRequest.
type SearchResponse struct {
	Hits []Hit
	// Total is either a bare number or an object with a "value" field.
	Total json.RawMessage
}

// Engine is the search engine transport. Retry and backoff belong to the
// implementation; the Gateway treats every returned error as final.
type Engine interface {
	Search(ctx context.Context, req SearchRequest) (*SearchResponse, error)
	Index(ctx context.Context, index, id string, body []byte) (WriteResult, error)
	Delete(ctx context.Context, index, id string) (WriteResult, error)
}
